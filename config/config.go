package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config captures runtime configuration for the application.
type Config struct {
	DataDir  string
	Window   Window
	Bridge   Bridge
	Logging  Logging
	Headless bool
	Flags    map[string]string
	Args     []string
}

type Window struct {
	Width  int
	Height int
}

type Bridge struct {
	Listen  string
	Enabled bool
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envDataDir  = "PATHKIT_DATA_DIR"
	envListen   = "PATHKIT_LISTEN"
	envNoBridge = "PATHKIT_NO_BRIDGE"
	envHeadless = "PATHKIT_HEADLESS"
	envWidth    = "PATHKIT_WIDTH"
	envHeight   = "PATHKIT_HEIGHT"
	envTrace    = "PATHKIT_TRACE"
	envLogFile  = "PATHKIT_LOG_FILE"

	defaultListen = "127.0.0.1:42069"
)

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("pathkit", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	dataDir := fs.String("data-dir", envOrDefault(env, envDataDir, ""), "directory holding paths.json and aliases.json")
	listen := fs.String("listen", envOrDefault(env, envListen, defaultListen), "address of the game client bridge")
	noBridge := fs.Bool("no-bridge", envOrBool(env, envNoBridge, false), "disable the game client bridge")
	headless := fs.Bool("headless", envOrBool(env, envHeadless, false), "run the bridge and commands without a window")
	width := fs.Int("width", envOrInt(env, envWidth, 1600), "initial window width")
	height := fs.Int("height", envOrInt(env, envHeight, 900), "initial window height")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *width <= 0 {
		return Config{}, fmt.Errorf("width must be > 0 (got %d)", *width)
	}
	if *height <= 0 {
		return Config{}, fmt.Errorf("height must be > 0 (got %d)", *height)
	}
	if *headless && *noBridge {
		return Config{}, fmt.Errorf("headless mode needs the bridge")
	}

	logPath := *logFile
	if logPath == "" && *dataDir != "" {
		logPath = filepath.Join(*dataDir, "pathkit.log")
	}

	cfg := Config{
		DataDir: *dataDir,
		Window: Window{
			Width:  *width,
			Height: *height,
		},
		Bridge: Bridge{
			Listen:  *listen,
			Enabled: !*noBridge,
		},
		Logging: Logging{
			FilePath: logPath,
			Trace:    *trace,
		},
		Headless: *headless,
		Flags: map[string]string{
			"dataDir":  *dataDir,
			"listen":   *listen,
			"noBridge": strconv.FormatBool(*noBridge),
			"headless": strconv.FormatBool(*headless),
			"width":    strconv.Itoa(*width),
			"height":   strconv.Itoa(*height),
			"trace":    strconv.FormatBool(*trace),
			"logFile":  logPath,
		},
		Args: append([]string(nil), fs.Args()...),
	}

	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	if v, ok := env[key]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	if v, ok := env[key]; ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}
