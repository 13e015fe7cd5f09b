package config

import (
	"path/filepath"
	"testing"
)

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Bridge.Listen != "127.0.0.1:42069" || !cfg.Bridge.Enabled {
		t.Fatalf("unexpected bridge config %+v", cfg.Bridge)
	}
	if cfg.Window.Width != 1600 || cfg.Window.Height != 900 {
		t.Fatalf("unexpected window %+v", cfg.Window)
	}
	if cfg.Headless || cfg.Logging.Trace || cfg.DataDir != "" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadArgsEnvironmentAndFlags(t *testing.T) {
	env := []string{
		"PATHKIT_DATA_DIR=/tmp/pk",
		"PATHKIT_LISTEN=0.0.0.0:9000",
		"PATHKIT_TRACE=true",
		"PATHKIT_WIDTH=800",
		"malformed",
	}
	cfg, err := LoadArgs([]string{"-listen", "127.0.0.1:7000", "extra"}, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataDir != "/tmp/pk" {
		t.Fatalf("expected data dir from env, got %q", cfg.DataDir)
	}
	if cfg.Bridge.Listen != "127.0.0.1:7000" {
		t.Fatalf("flag should override env, got %q", cfg.Bridge.Listen)
	}
	if !cfg.Logging.Trace || cfg.Window.Width != 800 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Logging.FilePath != filepath.Join("/tmp/pk", "pathkit.log") {
		t.Fatalf("expected log file under data dir, got %q", cfg.Logging.FilePath)
	}
	if len(cfg.Args) != 1 || cfg.Args[0] != "extra" {
		t.Fatalf("unexpected positional args %v", cfg.Args)
	}
}

func TestLoadArgsRejectsBadValues(t *testing.T) {
	cases := [][]string{
		{"-width", "0"},
		{"-height", "-5"},
		{"-headless", "-no-bridge"},
		{"-unknown"},
	}
	for _, args := range cases {
		if _, err := LoadArgs(args, nil); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}
