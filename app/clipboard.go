package app

import (
	"errors"
	"log"
	"runtime"

	atotto "github.com/atotto/clipboard"
	"golang.design/x/clipboard"
)

var errClipboardEmpty = errors.New("clipboard is empty")

// clipboardBackend reads and writes plain text.
type clipboardBackend interface {
	Read() ([]byte, error)
	Write(data []byte) error
}

// systemClipboard uses golang.design/x/clipboard.
type systemClipboard struct{}

func (systemClipboard) Read() ([]byte, error) {
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return nil, errClipboardEmpty
	}
	return data, nil
}

func (systemClipboard) Write(data []byte) error {
	clipboard.Write(clipboard.FmtText, data)
	return nil
}

// fallbackClipboard shells out through github.com/atotto/clipboard, for
// systems where the native clipboard cannot be initialised.
type fallbackClipboard struct{}

func (fallbackClipboard) Read() ([]byte, error) {
	s, err := atotto.ReadAll()
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, errClipboardEmpty
	}
	return []byte(s), nil
}

func (fallbackClipboard) Write(data []byte) error {
	return atotto.WriteAll(string(data))
}

// initClipboard initializes the clipboard for the application
func initClipboard() clipboardBackend {
	if runtime.GOARCH == "wasm" || runtime.GOOS == "js" {
		return fallbackClipboard{}
	}
	if err := clipboard.Init(); err != nil {
		log.Printf("[CLIPBOARD] native clipboard unavailable (%v), using fallback", err)
		return fallbackClipboard{}
	}
	return systemClipboard{}
}
