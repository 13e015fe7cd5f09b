package editor

import (
	"fmt"
	"image/color"

	"pathkit/layout"
)

var (
	colorBackground  = color.RGBA{0, 0, 0, 175}
	colorTabActive   = color.RGBA{0, 200, 255, 255}
	colorTabInactive = color.RGBA{0, 200, 255, 100}
	colorImport      = color.RGBA{200, 0, 0, 200}
	colorExport      = color.RGBA{0, 200, 0, 200}
	colorAddPoint    = color.RGBA{0, 0, 255, 200}
	colorRow         = color.RGBA{100, 100, 100, 220}
	colorCoord       = color.RGBA{0, 200, 255, 220}
	colorKeyOn       = color.RGBA{0, 0, 160, 200}
	colorButton      = color.RGBA{60, 60, 60, 200}
	colorDelete      = color.RGBA{200, 0, 0, 200}
	colorTrack       = color.RGBA{50, 50, 50, 180}
	colorThumb       = color.RGBA{150, 150, 150, 180}
	colorText        = color.RGBA{255, 255, 255, 255}
)

// Draw renders the editor for a w×h screen. It does not change any state.
func (e *Editor) Draw(r Renderer, w, h float64) {
	if e.session == nil {
		return
	}
	l := e.layout(w, h)
	pts := e.store.Config().Points(e.session.activeTab)

	label := func(s string, rect layout.Rect, inset float64) {
		r.Text(s, rect.X+inset, rect.Y+rect.H/3, l.Scale, colorText)
	}

	r.FillRect(l.Box, colorBackground)

	for _, t := range l.Tabs {
		c := colorTabInactive
		if t.Active {
			c = colorTabActive
		}
		r.FillRect(t.Rect, c)
		label(" "+t.Name, t.Rect, 0)
	}

	r.FillRect(l.Import, colorImport)
	label(" Import", l.Import, 0)
	r.FillRect(l.Export, colorExport)
	label(" Export", l.Export, 0)
	r.FillRect(l.AddPoint, colorAddPoint)
	label("  +", l.AddPoint, 0)

	for _, row := range l.Rows {
		wp := pts[row.Index]
		r.FillRect(row.Background, colorRow)
		for i, v := range []int{wp.X, wp.Y, wp.Z} {
			r.FillRect(row.Coords[i], colorCoord)
			label(fmt.Sprintf(" %c: %d", "XYZ"[i], v), row.Coords[i], 0)
		}
		for i, rect := range row.Keys {
			k := layout.KeyAt(i)
			c := colorButton
			if wp.HasKey(k) {
				c = colorKeyOn
			}
			r.FillRect(rect, c)
			label(" "+e.keybinds.Label(k), rect, rect.W/3)
		}
		r.FillRect(row.Up, colorButton)
		label(" ↑", row.Up, row.Up.W/3)
		r.FillRect(row.Down, colorButton)
		label(" ↓", row.Down, row.Down.W/3)
		r.FillRect(row.Delete, colorDelete)
		label("  X", row.Delete, 0)
	}

	if sb := l.Scrollbar; sb != nil {
		r.FillRect(sb.Track, colorTrack)
		r.FillRect(sb.Thumb, colorThumb)
	}
}
