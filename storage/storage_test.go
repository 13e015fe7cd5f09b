package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomicReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.json")
	if err := WriteFileAtomic(path, []byte("one"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("two"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "two" {
		t.Fatalf("expected two, got %q", got)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, found %d entries", len(entries))
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paths.json.lz4")
	payload := bytes.Repeat([]byte(`{"home":[]}`), 64)
	if err := WriteFile(path, payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if bytes.Equal(raw, payload) {
		t.Fatalf("expected compressed bytes on disk")
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestPlainFilesAreUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paths.json")
	if err := WriteFile(path, []byte("{}")); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if string(raw) != "{}" {
		t.Fatalf("unexpected contents %q", raw)
	}
}

func TestBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paths.json")
	if err := Backup(path); err != nil {
		t.Fatalf("backup of missing file should succeed: %v", err)
	}
	os.WriteFile(path, []byte("broken"), 0o644)
	if err := Backup(path); err != nil {
		t.Fatalf("backup: %v", err)
	}
	got, _ := os.ReadFile(path + ".bak")
	if string(got) != "broken" {
		t.Fatalf("unexpected backup contents %q", got)
	}
}

func TestSetDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	SetDataDir(dir)
	t.Cleanup(func() { SetDataDir("") })

	if DataDir() != dir {
		t.Fatalf("unexpected data dir %s", DataDir())
	}
	if DataFile("a.json") != filepath.Join(dir, "a.json") {
		t.Fatalf("unexpected data file path %s", DataFile("a.json"))
	}
}
