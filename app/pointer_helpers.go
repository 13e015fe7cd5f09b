package app

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var clickButtons = []ebiten.MouseButton{
	ebiten.MouseButtonLeft,
	ebiten.MouseButtonRight,
	ebiten.MouseButtonMiddle,
}

// anyJustPressed reports a new press of any mouse button or touch and its
// position.
func anyJustPressed() (int, int, bool) {
	if ids := inpututil.AppendJustPressedTouchIDs(nil); len(ids) > 0 {
		x, y := ebiten.TouchPosition(ids[0])
		return x, y, true
	}
	for _, b := range clickButtons {
		if inpututil.IsMouseButtonJustPressed(b) {
			x, y := ebiten.CursorPosition()
			return x, y, true
		}
	}
	return 0, 0, false
}

// wheelAccumulator turns fractional wheel input into whole scroll steps.
type wheelAccumulator struct {
	pending float64
}

// steps adds dy and returns the whole steps to apply, keeping the remainder.
func (w *wheelAccumulator) steps(dy float64) int {
	w.pending += dy
	n := int(w.pending)
	w.pending -= float64(n)
	return n
}
