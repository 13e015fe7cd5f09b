package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"pathkit/storage"
	"pathkit/typedef"
)

// KeybindsFile is the keybind file inside the data directory.
const KeybindsFile = "keybinds.json"

// LoadKeybinds reads keybinds from path. A missing file is created with the
// defaults. Unknown or empty bindings fall back to their defaults; a file that
// cannot be parsed yields the defaults and an error.
func LoadKeybinds(path string) (typedef.Keybinds, error) {
	k := typedef.DefaultKeybinds()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return k, SaveKeybinds(path, k)
	}
	if err != nil {
		return k, fmt.Errorf("read %s: %w", path, err)
	}

	var loaded typedef.Keybinds
	if err := json.Unmarshal(data, &loaded); err != nil {
		return k, fmt.Errorf("parse %s: %w", path, err)
	}
	typedef.NormalizeKeybinds(&loaded)
	return loaded, nil
}

// SaveKeybinds writes k to path as indented JSON.
func SaveKeybinds(path string, k typedef.Keybinds) error {
	data, err := json.MarshalIndent(k, "", "  ")
	if err != nil {
		return err
	}
	if err := storage.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
