// Package layout computes the path editor's geometry. Everything here is a
// pure function of screen size and editor state and is recomputed every frame.
package layout

import (
	"math"

	"pathkit/typedef"
)

// The UI was designed against this resolution; text scales with the screen
// diagonal relative to it.
const (
	ReferenceWidth  = 473
	ReferenceHeight = 854
)

// Rect is an axis-aligned rectangle in screen pixels.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Center returns the midpoint of r.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Params is the state the layout depends on.
type Params struct {
	ScreenW, ScreenH float64
	Tabs             []string
	ActiveTab        string
	ScrollOffset     int
	PointCount       int
}

// Tab is one path-name button.
type Tab struct {
	Name   string
	Rect   Rect
	Active bool
}

// Row is one visible waypoint. Index is the waypoint's position in the path,
// Slot its position on screen.
type Row struct {
	Index      int
	Slot       int
	Background Rect
	Coords     [3]Rect
	Keys       [4]Rect // same order as typedef.MovementKeys
	Up         Rect
	Down       Rect
	Delete     Rect
}

// Scrollbar is the track and thumb drawn when not every row fits.
type Scrollbar struct {
	Track Rect
	Thumb Rect
}

// Layout is the full geometry of one frame.
type Layout struct {
	Box         Rect
	Scale       float64
	RowHeight   float64
	ColumnWidth float64
	MaxVisible  int
	Tabs        []Tab
	Import      Rect
	Export      Rect
	AddPoint    Rect
	Rows        []Row
	Scrollbar   *Scrollbar
}

// Scale returns the text scale factor for a screen size.
func Scale(screenW, screenH float64) float64 {
	return math.Hypot(screenW, screenH) / math.Hypot(ReferenceWidth, ReferenceHeight)
}

// Box returns the GUI bounding box: 80% of the screen, offset by an eighth of
// its own size.
func Box(screenW, screenH float64) Rect {
	w := screenW * 0.8
	h := screenH * 0.8
	return Rect{X: w / 8, Y: h / 8, W: w, H: h}
}

// MaxVisible returns how many rows fit in the editor for a screen size.
func MaxVisible(screenW, screenH float64) int {
	box := Box(screenW, screenH)
	rowH := math.Floor(box.H / 12)
	if rowH <= 0 {
		return 0
	}
	return int(math.Floor((box.H * 0.8 / rowH) / 1.2))
}

// Compute lays out every control for one frame.
func Compute(p Params) Layout {
	box := Box(p.ScreenW, p.ScreenH)
	w, h := box.W, box.H
	rowH := math.Floor(h / 12)
	colW := math.Floor(w / 12)

	l := Layout{
		Box:         box,
		Scale:       Scale(p.ScreenW, p.ScreenH),
		RowHeight:   rowH,
		ColumnWidth: colW,
		MaxVisible:  MaxVisible(p.ScreenW, p.ScreenH),
	}

	headerY := box.Y + h/40
	headerH := h / 12

	if n := len(p.Tabs); n > 0 {
		tabW := (w / float64(n)) / 3
		l.Tabs = make([]Tab, n)
		for i, name := range p.Tabs {
			l.Tabs[i] = Tab{
				Name:   name,
				Rect:   Rect{X: box.X + float64(i)*tabW*1.1 + w/64, Y: headerY, W: tabW, H: headerH},
				Active: name == p.ActiveTab,
			}
		}
	}

	portW := (w / 2) / 6
	l.Import = Rect{X: w + w/32, Y: headerY, W: portW, H: headerH}
	l.Export = Rect{X: w - portW*1.1 + w/32, Y: headerY, W: portW, H: headerH}

	addW := (w / 2) / 13
	l.AddPoint = Rect{X: w - portW*1.2 + w/32 - addW, Y: headerY, W: addW, H: headerH}

	visible := l.MaxVisible
	if remaining := p.PointCount - p.ScrollOffset; remaining < visible {
		visible = remaining
	}
	if visible > 0 {
		l.Rows = make([]Row, 0, visible)
	}
	for slot := 0; slot < visible; slot++ {
		l.Rows = append(l.Rows, row(box, rowH, colW, slot, slot+p.ScrollOffset))
	}

	if p.PointCount > 0 && l.MaxVisible < p.PointCount {
		track := ScrollTrack(box)
		l.Scrollbar = &Scrollbar{
			Track: track,
			Thumb: Thumb(track, p.ScrollOffset, p.PointCount, l.MaxVisible),
		}
	}

	return l
}

func row(box Rect, rowH, colW float64, slot, index int) Row {
	w, h := box.W, box.H
	left := box.X * 1.2
	y := h/4 + float64(slot)*rowH*1.2

	r := Row{
		Index: index,
		Slot:  slot,
		Background: Rect{
			X: left - w/96,
			Y: y - rowH/20,
			W: w - w/20 + w/96,
			H: rowH + rowH/10,
		},
	}
	for i := range r.Coords {
		r.Coords[i] = Rect{X: left + float64(i)*colW*1.2, Y: y, W: colW, H: rowH}
	}

	btnW := colW / 1.2
	btnH := rowH / 1.2
	btnY := y + (h/12)/8

	x := left + colW*3.6
	for i := range r.Keys {
		r.Keys[i] = Rect{X: x, Y: btnY, W: btnW, H: btnH}
		x += btnW * 1.2
	}

	arrowX := w - colW*1.2
	r.Up = Rect{X: arrowX, Y: btnY, W: btnW, H: btnH}
	r.Down = Rect{X: arrowX + btnW*1.2, Y: btnY, W: btnW, H: btnH}

	delW := colW / 3
	r.Delete = Rect{X: w + colW*1.2 - delW, Y: btnY, W: delW, H: btnH}
	return r
}

// KeyAt returns the movement key drawn in slot i of a row.
func KeyAt(i int) typedef.ForcedKey {
	return typedef.MovementKeys[i]
}
