package paths

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pathkit/typedef"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), FileName))
}

func TestLoadMissingFileUsesDefault(t *testing.T) {
	s := newTestStore(t)
	if err := s.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Config().Len() == 0 || s.Config().First() != "path1" {
		t.Fatalf("expected default mapping, got %v", s.Config().Names())
	}
}

func TestLoadMalformedBacksUpAndFallsBack(t *testing.T) {
	s := newTestStore(t)
	os.WriteFile(s.File(), []byte(`{"home": [`), 0o644)

	err := s.Load()
	if err == nil {
		t.Fatalf("expected load error to be reported")
	}
	if s.Config().First() != "path1" {
		t.Fatalf("expected default mapping after bad load")
	}
	backup, berr := os.ReadFile(s.File() + ".bak")
	if berr != nil || string(backup) != `{"home": [` {
		t.Fatalf("expected original contents in backup, got %q (%v)", backup, berr)
	}
}

func TestLoadEmptyMappingFallsBack(t *testing.T) {
	s := newTestStore(t)
	os.WriteFile(s.File(), []byte(`{}`), 0o644)
	if err := s.Load(); !errors.Is(err, ErrEmptyConfig) {
		t.Fatalf("expected ErrEmptyConfig, got %v", err)
	}
	if s.Config().Len() == 0 {
		t.Fatalf("store must never hold an empty mapping")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	cfg := typedef.NewPathConfig()
	_ = cfg.Set("home", []typedef.Waypoint{
		{X: 1, Y: 2, Z: 3, ForcedKeys: []typedef.ForcedKey{typedef.KeyBack}},
	})
	_ = cfg.Set("farm", []typedef.Waypoint{{X: -10, Y: 60, Z: 99}})
	s.Replace(cfg)

	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, _ := os.ReadFile(s.File())
	if !strings.HasPrefix(string(raw), "{\n  \"home\": [") {
		t.Fatalf("expected pretty JSON, got:\n%s", raw)
	}

	other := NewStore(s.File())
	if err := other.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !other.Config().Equal(cfg) {
		t.Fatalf("round trip mismatch")
	}
}

func TestReadFileRejectsMalformed(t *testing.T) {

	dir := t.TempDir()
	cases := map[string]string{
		"broken.json": `{"a": [}`,
		"empty.json":  `{}`,
		"badkey.json": `{"a":[{"x":1,"y":1,"z":1,"forcedKeys":["sprint"]}]}`,
		"array.json":  `[1,2,3]`,
		"blank.json":  ``,
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		os.WriteFile(path, []byte(body), 0o644)
		if cfg, err := ReadFile(path); err == nil {
			t.Fatalf("%s: expected import error, got %d paths", name, cfg.Len())
		}
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestWriteReadCompressed(t *testing.T) {
	cfg := typedef.NewPathConfig()
	_ = cfg.Set("route", []typedef.Waypoint{{X: 5, Y: 6, Z: 7}})
	data, err := Encode(cfg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	path := filepath.Join(t.TempDir(), "export.json.lz4")
	if err := WriteFile(path, data); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !got.Equal(cfg) {
		t.Fatalf("imported mapping differs")
	}
}
