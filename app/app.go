// Package app is the desktop window: it feeds ebiten input to the path editor
// and the chat console and draws both.
package app

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"pathkit/chat"
	"pathkit/command"
	"pathkit/editor"
	"pathkit/logging"
	"pathkit/player"
	"pathkit/typedef"
)

// Bridge is the part of the game-client bridge the window needs.
type Bridge interface {
	Connected() int
	SendCommand(line string) error
}

// Options wires the window to the rest of the program.
type Options struct {
	Editor   *editor.Editor
	Commands *command.Table
	Chat     *chat.Log
	ChatTTL  time.Duration
	Notify   chat.Notifier
	Player   *player.Tracker
	Bridge   Bridge // nil when the bridge is disabled
	Keybinds typedef.Keybinds
}

// Game implements ebiten.Game.
type Game struct {
	opts      Options
	console   chat.Console
	clipboard clipboardBackend
	wheel     wheelAccumulator
	tasks     chan func()
	screenW   int
	screenH   int
	frame     int
	lastTick  time.Time
	quit      atomic.Bool
}

// New creates the window state. Call it before ebiten.RunGame.
func New(opts Options) *Game {
	if opts.ChatTTL <= 0 {
		opts.ChatTTL = 10 * time.Second
	}
	opts.Editor.SetKeybinds(opts.Keybinds)
	return &Game{
		opts:      opts,
		clipboard: initClipboard(),
		tasks:     make(chan func(), 64),
	}
}

// Post runs fn on the UI thread during the next Update. It is safe to call
// from any goroutine.
func (g *Game) Post(fn func()) {
	select {
	case g.tasks <- fn:
	default:
		logging.Error(errors.New("UI task queue full, dropping task"))
	}
}

// Quit asks the window to close the editor and stop after the current frame.
// It is safe to call from any goroutine.
func (g *Game) Quit() {
	g.quit.Store(true)
}

// Update handles one frame of input.
func (g *Game) Update() error {
	g.frame++
	now := time.Now()
	dt := now.Sub(g.lastTick)
	if g.lastTick.IsZero() || dt > 250*time.Millisecond {
		dt = time.Second / time.Duration(ebiten.TPS())
	}
	g.lastTick = now

	g.runTasks()
	g.opts.Editor.Poll()

	if g.quit.Load() || ebiten.IsWindowBeingClosed() {
		_ = g.opts.Editor.Close()
		return ebiten.Termination
	}

	if g.console.IsOpen() {
		g.updateConsole()
		return nil
	}

	ed := g.opts.Editor
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		if ed.IsOpen() {
			_ = ed.Close()
		}
		return nil
	case bindingJustPressed(g.opts.Keybinds.PathEditor):
		ed.Toggle()
		return nil
	case bindingJustPressed(g.opts.Keybinds.Chat):
		g.console.Open("")
		return nil
	case inpututil.IsKeyJustPressed(ebiten.KeySlash):
		g.console.Open("/")
		return nil
	}

	if ed.IsOpen() {
		g.updateEditor()
		return nil
	}

	if g.opts.Bridge == nil || g.opts.Bridge.Connected() == 0 {
		g.opts.Player.Walk(heldMovementKeys(g.opts.Keybinds), dt)
	}
	return nil
}

func (g *Game) runTasks() {
	for {
		select {
		case fn := <-g.tasks:
			fn()
		default:
			return
		}
	}
}

func (g *Game) updateEditor() {
	ed := g.opts.Editor
	w, h := float64(g.screenW), float64(g.screenH)

	if x, y, ok := anyJustPressed(); ok {
		ed.Click(float64(x), float64(y), w, h)
	}
	_, wy := ebiten.Wheel()
	if n := g.wheel.steps(wy); n != 0 {
		x, y := ebiten.CursorPosition()
		ed.Scroll(float64(x), float64(y), n, w, h)
	}

	if !ctrlPressed() {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyActivePath()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyV) {
		g.pastePaths()
	}
}

func (g *Game) copyActivePath() {
	data, err := g.opts.Editor.ActivePathJSON()
	if err == nil {
		err = g.clipboard.Write(data)
	}
	if err != nil {
		logging.Error(err)
		g.opts.Notify.Chat(fmt.Sprintf("Copy failed: %v", err))
		return
	}
	g.opts.Notify.Chat(fmt.Sprintf("Copied %s to the clipboard", g.opts.Editor.ActiveTab()))
}

func (g *Game) pastePaths() {
	data, err := g.clipboard.Read()
	if err == nil {
		err = g.opts.Editor.ImportData(data)
	}
	if err != nil {
		g.opts.Notify.Chat(fmt.Sprintf("Error importing data: %v", err))
		return
	}
	g.opts.Notify.Chat("Imported paths from the clipboard")
}

func (g *Game) updateConsole() {
	c := &g.console
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		c.Close()
		return
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter), inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter):
		line := c.Submit()
		var fallback chat.Sender
		if g.opts.Bridge != nil {
			fallback = g.opts.Bridge
		}
		chat.Run(line, g.opts.Commands, fallback, g.opts.Notify)
		return
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		if matches := c.Complete(g.opts.Commands); len(matches) > 0 {
			g.opts.Chat.Chat(strings.Join(matches, "  "))
		}
		return
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		c.Previous()
		return
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		c.Next()
		return
	}

	if repeatPressed(ebiten.KeyBackspace) {
		c.Backspace()
	}
	c.Insert(ebiten.AppendInputChars(nil))
}

// repeatPressed reports a key press with key repeat after a short delay.
func repeatPressed(key ebiten.Key) bool {
	d := inpututil.KeyPressDuration(key)
	return d == 1 || (d > 30 && d%3 == 0)
}

// Draw renders the editor, the chat and the status line.
func (g *Game) Draw(screen *ebiten.Image) {
	g.opts.Editor.Draw(screenRenderer{screen: screen}, float64(g.screenW), float64(g.screenH))

	p := g.opts.Player.Position()
	status := fmt.Sprintf("X: %.1f  Y: %.1f  Z: %.1f", p.X, p.Y, p.Z)
	if g.opts.Bridge != nil {
		status += fmt.Sprintf("   bridge: %d client(s)", g.opts.Bridge.Connected())
	}
	drawText(screen, status, chatFontSize, chatMargin, chatMargin+lineHeight(chatFontSize), hudText)

	drawChat(screen, g.opts.Chat, g.console.IsOpen(), time.Now(), g.opts.ChatTTL)
	drawConsole(screen, &g.console, g.frame)
}

// Layout keeps a one-to-one mapping between window and screen pixels.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth <= 0 || outsideHeight <= 0 {
		outsideWidth, outsideHeight = 1280, 720
	}
	g.screenW, g.screenH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
