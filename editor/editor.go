// Package editor is the path editor overlay: it turns clicks and wheel events
// into edits of the path store and draws the current state through a Renderer.
package editor

import (
	"errors"
	"fmt"
	"image/color"
	"log"
	"path/filepath"
	"sync"

	"pathkit/layout"
	"pathkit/logging"
	"pathkit/paths"
	"pathkit/typedef"
)

// ErrCancelled is returned by a FilePicker when the user dismissed the dialog.
var ErrCancelled = errors.New("dialog cancelled")

// Renderer receives the draw calls for one frame.
type Renderer interface {
	FillRect(r layout.Rect, c color.RGBA)
	Text(s string, x, y, scale float64, c color.RGBA)
}

// FilePicker shows blocking open/save dialogs. It is only called from worker
// goroutines.
type FilePicker interface {
	OpenFile(title string) (string, error)
	SaveFile(title string) (string, error)
}

// PositionSource reports where the player is standing.
type PositionSource interface {
	Position() typedef.Position
}

// Notifier shows a chat line to the user. It must be safe for concurrent use.
type Notifier interface {
	Chat(msg string)
}

// Editor is the path editor. Every method except the dialog workers runs on
// the UI thread.
type Editor struct {
	store    *paths.Store
	picker   FilePicker
	player   PositionSource
	notify   Notifier
	keybinds typedef.Keybinds
	session  *Session
	workers  sync.WaitGroup
}

// New creates a closed editor.
func New(store *paths.Store, picker FilePicker, player PositionSource, notify Notifier) *Editor {
	return &Editor{
		store:    store,
		picker:   picker,
		player:   player,
		notify:   notify,
		keybinds: typedef.DefaultKeybinds(),
	}
}

// SetKeybinds changes the labels on the forced-key toggles.
func (e *Editor) SetKeybinds(k typedef.Keybinds) {
	e.keybinds = k
}

// IsOpen reports whether the overlay is showing.
func (e *Editor) IsOpen() bool {
	return e.session != nil
}

// Open shows the overlay on the first path. Opening an open editor does
// nothing.
func (e *Editor) Open() {
	if e.session != nil {
		return
	}
	e.session = newSession(e.store.Config().First())
	log.Printf("[EDITOR] opened on %q", e.session.activeTab)
}

// Close saves the paths and hides the overlay. A failed save is reported in
// chat; the in-memory paths are kept either way.
func (e *Editor) Close() error {
	if e.session == nil {
		return nil
	}
	for _, r := range e.session.close() {
		e.discard(r, errSessionClosed)
	}
	e.session = nil

	if err := e.store.Save(); err != nil {
		logging.Error(err)
		e.notify.Chat(fmt.Sprintf("Failed to save paths: %v", err))
		return err
	}
	log.Printf("[EDITOR] closed, paths saved to %s", e.store.File())
	return nil
}

// Toggle opens a closed editor and closes an open one.
func (e *Editor) Toggle() {
	if e.IsOpen() {
		_ = e.Close()
		return
	}
	e.Open()
}

// ActiveTab returns the selected path, or "" when closed.
func (e *Editor) ActiveTab() string {
	if e.session == nil {
		return ""
	}
	return e.session.activeTab
}

// ScrollOffset returns the index of the first visible row.
func (e *Editor) ScrollOffset() int {
	if e.session == nil {
		return 0
	}
	return e.session.scroll
}

// Wait blocks until every dialog worker has finished.
func (e *Editor) Wait() {
	e.workers.Wait()
}

func (e *Editor) layout(w, h float64) layout.Layout {
	cfg := e.store.Config()
	s := e.session
	return layout.Compute(layout.Params{
		ScreenW:      w,
		ScreenH:      h,
		Tabs:         cfg.Names(),
		ActiveTab:    s.activeTab,
		ScrollOffset: s.scroll,
		PointCount:   len(cfg.Points(s.activeTab)),
	})
}

// Click handles a mouse press at (x, y) on a w×h screen. Any button counts.
func (e *Editor) Click(x, y, w, h float64) {
	if e.session == nil {
		return
	}
	s := e.session
	cfg := e.store.Config()
	l := e.layout(w, h)
	s.maxVisible = l.MaxVisible
	hit := l.HitTest(x, y)

	switch hit.Control {
	case layout.ControlTab:
		s.activeTab = hit.Tab
		s.scroll = 0
	case layout.ControlImport:
		e.startImport(s)
	case layout.ControlExport:
		e.startExport()
	case layout.ControlAddPoint:
		if !cfg.Has(s.activeTab) {
			return
		}
		wp := typedef.WaypointAt(e.player.Position())
		n := cfg.Append(s.activeTab, wp)
		s.scroll = layout.MaxScroll(n, l.MaxVisible)
	case layout.ControlDelete:
		if cfg.Remove(s.activeTab, hit.Index) {
			s.scroll = layout.Clamp(s.scroll, len(cfg.Points(s.activeTab)), l.MaxVisible)
		}
	case layout.ControlKey:
		cfg.ToggleKey(s.activeTab, hit.Index, hit.Key)
	case layout.ControlMoveUp:
		cfg.Swap(s.activeTab, hit.Index, hit.Index-1)
	case layout.ControlMoveDown:
		cfg.Swap(s.activeTab, hit.Index, hit.Index+1)
	}
}

// Scroll applies a wheel delta when the pointer is inside the editor box.
// Positive deltas scroll towards the top.
func (e *Editor) Scroll(x, y float64, delta int, w, h float64) {
	if e.session == nil || delta == 0 {
		return
	}
	if !layout.Box(w, h).Contains(x, y) {
		return
	}
	s := e.session
	s.maxVisible = layout.MaxVisible(w, h)
	total := len(e.store.Config().Points(s.activeTab))
	s.scroll = layout.Scroll(s.scroll, delta, total, s.maxVisible)
}

// Poll applies finished imports. It must be called once per UI frame.
func (e *Editor) Poll() {
	if e.session == nil {
		return
	}
	for _, r := range e.session.drain() {
		if r.err != nil {
			logging.Error(r.err)
			e.notify.Chat(fmt.Sprintf("Error importing data: %v", r.err))
			continue
		}
		e.apply(r.cfg)
		e.notify.Chat(fmt.Sprintf("Imported %d paths from %s", r.cfg.Len(), r.path))
	}
}

// ImportData replaces every path with the JSON document in data. It runs on
// the UI thread and is used for clipboard pastes.
func (e *Editor) ImportData(data []byte) error {
	cfg, err := paths.Parse(data)
	if err != nil {
		return err
	}
	e.apply(cfg)
	return nil
}

// ActivePathJSON renders the waypoints of the selected path.
func (e *Editor) ActivePathJSON() ([]byte, error) {
	if e.session == nil {
		return nil, errors.New("path editor is closed")
	}
	single := typedef.NewPathConfig()
	tab := e.session.activeTab
	if err := single.Set(tab, e.store.Config().Points(tab)); err != nil {
		return nil, err
	}
	return paths.Encode(single)
}

func (e *Editor) apply(cfg *typedef.PathConfig) {
	e.store.Replace(cfg)
	if s := e.session; s != nil {
		if !cfg.Has(s.activeTab) {
			s.activeTab = cfg.First()
			s.scroll = 0
		}
		s.scroll = layout.Clamp(s.scroll, len(cfg.Points(s.activeTab)), s.maxVisible)
	}
	log.Printf("[EDITOR] replaced paths, %d loaded", cfg.Len())
}

func (e *Editor) discard(r result, reason error) {
	if r.err != nil {
		logging.Error(fmt.Errorf("discarded failed import: %w", r.err))
		return
	}
	logging.Debugf("discarded import from %s: %v", r.path, reason)
	e.notify.Chat(fmt.Sprintf("Import from %s was dropped because %v.", r.path, reason))
}

func (e *Editor) startImport(s *Session) {
	e.workers.Add(1)
	go func() {
		defer e.workers.Done()
		path, err := e.picker.OpenFile("Import paths")
		if err != nil {
			if !errors.Is(err, ErrCancelled) {
				e.notify.Chat(fmt.Sprintf("Error importing data: %v", err))
			}
			return
		}
		r := result{path: path}
		r.cfg, r.err = paths.ReadFile(path)
		if err := s.deliver(r); err != nil {
			e.discard(r, err)
		}
	}()
}

func (e *Editor) startExport() {
	data, err := paths.Encode(e.store.Config())
	if err != nil {
		e.notify.Chat(fmt.Sprintf("Error writing JSON: %v", err))
		return
	}
	e.workers.Add(1)
	go func() {
		defer e.workers.Done()
		path, err := e.picker.SaveFile("Export paths")
		if err != nil {
			if !errors.Is(err, ErrCancelled) {
				e.notify.Chat(fmt.Sprintf("Error writing JSON: %v", err))
			}
			return
		}
		if err := paths.WriteFile(path, data); err != nil {
			logging.Error(err)
			e.notify.Chat(fmt.Sprintf("Error writing JSON: %v", err))
			return
		}
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		e.notify.Chat("File saved to " + path)
	}()
}
