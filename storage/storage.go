package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/pierrec/lz4"
)

var (
	dataDirMu   sync.Mutex
	dataDirPath string
)

// SetDataDir overrides the data directory. An empty value restores platform detection.
func SetDataDir(dir string) {
	dataDirMu.Lock()
	dataDirPath = dir
	dataDirMu.Unlock()
}

// DataDir returns the platform-appropriate writable data directory and creates it if missing.
func DataDir() string {
	dataDirMu.Lock()
	defer dataDirMu.Unlock()
	if dataDirPath == "" {
		dataDirPath = resolveDataDir()
	}
	_ = os.MkdirAll(dataDirPath, 0o755)
	return dataDirPath
}

// DataFile joins the data directory with the provided relative name.
func DataFile(name string) string {
	return filepath.Join(DataDir(), name)
}

// WriteFileAtomic replaces path with data through a temp file in the same
// directory, so readers never observe a half-written document.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// IsCompressed reports whether path names an lz4-framed document.
func IsCompressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".lz4")
}

// ReadFile reads path, transparently decompressing .lz4 files.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !IsCompressed(path) {
		return data, nil
	}
	out, err := DecompressLZ4(data)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", filepath.Base(path), err)
	}
	return out, nil
}

// WriteFile writes data to path, compressing when the path ends in .lz4.
func WriteFile(path string, data []byte) error {
	if IsCompressed(path) {
		compressed, err := CompressLZ4(data)
		if err != nil {
			return fmt.Errorf("compress %s: %w", filepath.Base(path), err)
		}
		data = compressed
	}
	return WriteFileAtomic(path, data, 0o644)
}

// Backup copies path to path+".bak". A missing source is not an error.
func Backup(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return WriteFileAtomic(path+".bak", data, 0o644)
}

// CompressLZ4 compresses data using LZ4
func CompressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := lz4.NewWriter(&buf)

	_, err := writer.Write(data)
	if err != nil {
		writer.Close()
		return nil, err
	}

	err = writer.Close()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DecompressLZ4 decompresses LZ4 data
func DecompressLZ4(data []byte) ([]byte, error) {
	reader := lz4.NewReader(bytes.NewReader(data))

	var buf bytes.Buffer
	_, err := io.Copy(&buf, reader)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func resolveDataDir() string {
	if custom := os.Getenv("PATHKIT_DATA_DIR"); custom != "" {
		return custom
	}

	switch runtime.GOOS {
	case "windows":
		if base := os.Getenv("APPDATA"); base != "" {
			return filepath.Join(base, "pathkit")
		}
		if base := os.Getenv("LOCALAPPDATA"); base != "" {
			return filepath.Join(base, "pathkit")
		}
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Application Support", "pathkit")
		}
	default: // Linux and others
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "pathkit")
		}
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".local", "share", "pathkit")
		}
	}

	// Final fallback: use current directory
	return "./pathkit"
}
