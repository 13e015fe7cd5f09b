package editor

import (
	"os"
	"path/filepath"
	"testing"

	"pathkit/logging"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "pathkit-editor-log")
	if err != nil {
		panic(err)
	}
	logging.Configure(filepath.Join(dir, "test.log"))
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}
