// Package dialogs shows the operating system's file pickers for path import
// and export.
package dialogs

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sqweek/dialog"

	"pathkit/editor"
)

// ErrCancelled is returned when the user closes a dialog without choosing a
// file.
var ErrCancelled = editor.ErrCancelled

// Native opens file dialogs through sqweek/dialog. StartDir, when set, is the
// folder the dialogs open in.
type Native struct {
	StartDir string
}

func (n Native) builder(title string) *dialog.FileBuilder {
	b := dialog.File().
		Filter("Path files", "json", "lz4").
		Title(title)
	if n.StartDir != "" {
		b = b.SetStartDir(n.StartDir)
	}
	return b
}

// OpenFile asks for an existing file.
func (n Native) OpenFile(title string) (string, error) {
	return result(n.builder(title).Load())
}

// SaveFile asks for a destination. A name without an extension gets ".json".
func (n Native) SaveFile(title string) (string, error) {
	path, err := result(n.builder(title).Save())
	if err != nil {
		return "", err
	}
	return WithDefaultExt(path), nil
}

func result(path string, err error) (string, error) {
	if errors.Is(err, dialog.ErrCancelled) {
		return "", ErrCancelled
	}
	if err != nil {
		return "", fmt.Errorf("file dialog: %w", err)
	}
	if path == "" {
		return "", ErrCancelled
	}
	return filepath.Clean(path), nil
}

// WithDefaultExt appends ".json" to path when it has no extension.
func WithDefaultExt(path string) string {
	if filepath.Ext(path) == "" && !strings.HasSuffix(path, string(filepath.Separator)) {
		return path + ".json"
	}
	return path
}
