// Package paths owns the named waypoint lists edited by the path editor and
// their JSON file.
package paths

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"pathkit/logging"
	"pathkit/storage"
	"pathkit/typedef"
)

// FileName is the path file inside the data directory.
const FileName = "paths.json"

var ErrEmptyConfig = errors.New("path file contains no paths")

// Store holds the current path config behind a single pointer so a whole
// mapping can be published in one swap.
type Store struct {
	file string
	cfg  atomic.Pointer[typedef.PathConfig]
}

// NewStore creates a store backed by file, starting from the default mapping.
func NewStore(file string) *Store {
	s := &Store{file: file}
	s.cfg.Store(typedef.DefaultPathConfig())
	return s
}

// File returns the backing file path.
func (s *Store) File() string {
	return s.file
}

// Config returns the current mapping. Callers on the UI thread may mutate it
// in place; other goroutines must treat it as read-only.
func (s *Store) Config() *typedef.PathConfig {
	return s.cfg.Load()
}

// Replace publishes cfg as the current mapping.
func (s *Store) Replace(cfg *typedef.PathConfig) {
	s.cfg.Store(cfg)
}

// Load reads the backing file. The store always ends up with a usable,
// non-empty mapping: a missing file yields the default, and an unreadable or
// malformed one is copied to <file>.bak before falling back. The returned error
// describes why a fallback happened and is meant for the user, not for aborting.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.file)
	if err != nil {
		s.Replace(typedef.DefaultPathConfig())
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", s.file, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		if berr := storage.Backup(s.file); berr != nil {
			logging.Error(fmt.Errorf("backup %s: %w", s.file, berr))
		}
		s.Replace(typedef.DefaultPathConfig())
		return fmt.Errorf("load %s: %w", s.file, err)
	}
	s.Replace(cfg)
	return nil
}

// Save writes the current mapping to the backing file.
func (s *Store) Save() error {
	data, err := Encode(s.Config())
	if err != nil {
		return err
	}
	if err := storage.WriteFileAtomic(s.file, data, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", s.file, err)
	}
	return nil
}

// Parse decodes and validates a path document.
func Parse(data []byte) (*typedef.PathConfig, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, ErrEmptyConfig
	}
	cfg := typedef.NewPathConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Len() == 0 {
		return nil, ErrEmptyConfig
	}
	return cfg, nil
}

// Encode renders cfg as two-space indented JSON.
func Encode(cfg *typedef.PathConfig) ([]byte, error) {
	return json.MarshalIndent(cfg, "", "  ")
}

// ReadFile reads and validates a path document from an arbitrary location.
// It touches no shared state and is safe to call from a worker goroutine.
func ReadFile(path string) (*typedef.PathConfig, error) {
	data, err := storage.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// WriteFile writes already encoded data to path, compressing .lz4 targets.
func WriteFile(path string, data []byte) error {
	if err := storage.WriteFile(path, data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
