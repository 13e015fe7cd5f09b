package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"pathkit/alias"
	"pathkit/api"
	"pathkit/app"
	"pathkit/chat"
	"pathkit/command"
	"pathkit/config"
	"pathkit/dialogs"
	"pathkit/editor"
	"pathkit/javascript"
	"pathkit/logging"
	"pathkit/paths"
	"pathkit/player"
	"pathkit/storage"

	// hideconsole
	_ "github.com/ebitengine/hideconsole"
	"github.com/hajimehoshi/ebiten/v2"
)

const (
	chatHistory = 100
	chatTTL     = 10 * time.Second
)

var errBridgeDisabled = errors.New("the game client bridge is disabled")

// offlineSender stands in for the bridge when it is disabled.
type offlineSender struct{}

func (offlineSender) SendCommand(string) error { return errBridgeDisabled }

type services struct {
	cfg     config.Config
	table   *command.Table
	chatLog *chat.Log
	notify  chat.Fanout
	tracker *player.Tracker
	bridge  *api.API
	paths   *paths.Store
	aliases *alias.Store
	scripts *javascript.Host
	editor  *editor.Editor
	game    *app.Game
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cfg.DataDir != "" {
		storage.SetDataDir(cfg.DataDir)
	}
	if err := os.MkdirAll(storage.DataDir(), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create data directory: %v\n", err)
		os.Exit(1)
	}
	logPath := cfg.Logging.FilePath
	if logPath == "" {
		logPath = storage.DataFile("pathkit.log")
	}
	logging.Configure(logPath)
	logging.SetTraceEnabled(cfg.Logging.Trace)

	lockPath := storage.DataFile(".pathkit.lock")
	lockFile, lockOwned, cleanupLock, err := prepareLock(lockPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lock %s: %v\n", lockPath, err)
		os.Exit(1)
	}
	_ = lockFile // retained to keep handle open for lifetime
	if !lockOwned {
		cleanupLock()
		fmt.Fprintf(os.Stderr, "another pathkit instance is using %s (delete %s if none is running)\n", storage.DataDir(), lockPath)
		os.Exit(1)
	}
	defer cleanupLock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := setup(cfg)
	if err != nil {
		logging.Error(err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if svc.bridge != nil {
		go func() {
			if err := svc.bridge.ListenAndServe(ctx, cfg.Bridge.Listen); err != nil {
				logging.Error(err)
				svc.notify.Chat(err.Error())
			}
		}()
		fmt.Printf("Game client bridge is available at ws://%s/ws\n", cfg.Bridge.Listen)
	}

	if cfg.Headless {
		runHeadless(ctx, svc)
		return
	}
	if err := runWithGUI(ctx, svc); err != nil {
		logging.Error(err)
		fmt.Fprintln(os.Stderr, err)
	}
}

// setup loads the stores and registers every chat command. Built-ins go in
// first so a stored alias can never take one of their names.
func setup(cfg config.Config) (*services, error) {
	svc := &services{
		cfg:     cfg,
		table:   command.NewTable(),
		chatLog: chat.NewLog(chatHistory, chatTTL),
		tracker: player.NewTracker(),
	}
	svc.notify = chat.Fanout{svc.chatLog}

	var sender alias.Sender = offlineSender{}
	if cfg.Bridge.Enabled {
		svc.bridge = api.NewAPI(svc.table, svc.tracker)
		svc.notify = append(svc.notify, svc.bridge)
		sender = svc.bridge
	}

	svc.paths = paths.NewStore(storage.DataFile(paths.FileName))
	if err := svc.paths.Load(); err != nil {
		logging.Error(err)
		svc.notify.Chat(fmt.Sprintf("Failed to load paths, using defaults: %v", err))
	}

	svc.scripts = javascript.NewHost(storage.DataFile("scripts"), svc.table, svc.notify, svc.tracker)
	if err := svc.scripts.InstallCommands(); err != nil {
		return nil, err
	}

	openPaths := func([]string) error {
		svc.notify.Chat("The path editor needs a window; restart pathkit without -headless.")
		return nil
	}
	if !cfg.Headless {
		svc.game = newGame(svc)
		openPaths = func([]string) error {
			svc.game.Post(svc.editor.Open)
			return nil
		}
	}
	if err := svc.table.Register("paths", command.KindBuiltin, "/paths", openPaths); err != nil {
		return nil, err
	}

	svc.aliases = alias.NewStore(storage.DataFile(alias.FileName), svc.table, sender, svc.notify)
	if err := svc.aliases.InstallCommands(); err != nil {
		return nil, err
	}
	if err := svc.aliases.Load(); err != nil {
		logging.Error(err)
	}
	return svc, nil
}

func newGame(svc *services) *app.Game {
	keybinds, err := config.LoadKeybinds(storage.DataFile(config.KeybindsFile))
	if err != nil {
		logging.Error(err)
		svc.notify.Chat(fmt.Sprintf("Failed to load keybinds, using defaults: %v", err))
	}

	svc.editor = editor.New(svc.paths, dialogs.Native{StartDir: storage.DataDir()}, svc.tracker, svc.notify)
	opts := app.Options{
		Editor:   svc.editor,
		Commands: svc.table,
		Chat:     svc.chatLog,
		ChatTTL:  chatTTL,
		Notify:   svc.notify,
		Player:   svc.tracker,
		Keybinds: keybinds,
	}
	if svc.bridge != nil {
		opts.Bridge = svc.bridge
	}
	return app.New(opts)
}

func prepareLock(lockPath string) (*os.File, bool, func(), error) {
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	owned := true
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			owned = false
			lockFile, err = os.OpenFile(lockPath, os.O_WRONLY, 0o644)
			if err != nil {
				return nil, false, nil, err
			}
		} else {
			return nil, false, nil, err
		}
	}

	var cleanupOnce sync.Once
	cleanup := func() {
		cleanupOnce.Do(func() {
			if lockFile != nil {
				_ = lockFile.Close()
			}
			if owned {
				os.Remove(lockPath)
			}
		})
	}

	return lockFile, owned, cleanup, nil
}

func runHeadless(ctx context.Context, svc *services) {
	fmt.Println("Starting pathkit in headless mode...")

	<-ctx.Done()
	fmt.Println("Received shutdown signal. Cleaning up...")
	if err := svc.paths.Save(); err != nil {
		logging.Error(err)
	}
	fmt.Println("Shutdown complete.")
}

func runWithGUI(ctx context.Context, svc *services) error {
	go func() {
		<-ctx.Done()
		fmt.Println("Received shutdown signal. Cleaning up...")
		svc.game.Quit()
	}()

	ebiten.SetWindowTitle("pathkit")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetWindowSize(svc.cfg.Window.Width, svc.cfg.Window.Height)

	return ebiten.RunGameWithOptions(svc.game, &ebiten.RunGameOptions{
		X11ClassName:    "pathkit",
		X11InstanceName: "pathkit",
	})
}
