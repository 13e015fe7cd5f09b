package dialogs

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/sqweek/dialog"
)

func TestResult(t *testing.T) {
	if _, err := result("", dialog.ErrCancelled); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if _, err := result("", nil); !errors.Is(err, ErrCancelled) {
		t.Fatalf("an empty selection should count as cancelled, got %v", err)
	}
	boom := errors.New("no display")
	if _, err := result("", boom); !errors.Is(err, boom) || errors.Is(err, ErrCancelled) {
		t.Fatalf("expected wrapped dialog error, got %v", err)
	}
	in := filepath.Join("a", "b", "..", "paths.json")
	got, err := result(in, nil)
	if err != nil || got != filepath.Join("a", "paths.json") {
		t.Fatalf("expected cleaned path, got %q, %v", got, err)
	}
}

func TestWithDefaultExt(t *testing.T) {
	cases := map[string]string{
		"paths":          "paths.json",
		"paths.json":     "paths.json",
		"paths.json.lz4": "paths.json.lz4",
	}
	for in, want := range cases {
		if got := WithDefaultExt(in); got != want {
			t.Fatalf("WithDefaultExt(%q) = %q, want %q", in, got, want)
		}
	}
}
