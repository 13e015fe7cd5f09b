package layout

import "math"

// MinThumbHeight keeps the scrollbar thumb grabbable on long lists.
const MinThumbHeight = 20

// MaxScroll is the largest valid offset for a list.
func MaxScroll(total, maxVisible int) int {
	if m := total - maxVisible; m > 0 {
		return m
	}
	return 0
}

// Clamp forces offset into [0, MaxScroll(total, maxVisible)].
func Clamp(offset, total, maxVisible int) int {
	if m := MaxScroll(total, maxVisible); offset > m {
		offset = m
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// Scroll applies a wheel delta. Positive deltas (wheel up) move towards the
// top of the list.
func Scroll(offset, delta, total, maxVisible int) int {
	// delta only matters up to the list length; bounding it keeps offset-delta
	// from overflowing.
	limit := total
	if limit < 0 {
		limit = 0
	}
	if delta > limit {
		delta = limit
	} else if delta < -limit {
		delta = -limit
	}
	return Clamp(offset-delta, total, maxVisible)
}

// ScrollTrack is the scrollbar track at the right edge of the GUI box.
func ScrollTrack(box Rect) Rect {
	w := box.W / 80
	return Rect{
		X: box.X + box.W - w - box.W/128,
		Y: box.Y + box.H/8,
		W: w,
		H: box.H / 1.3,
	}
}

// Thumb positions the scrollbar thumb inside track.
func Thumb(track Rect, offset, total, maxVisible int) Rect {
	thumbH := track.H
	if total > 0 {
		thumbH = track.H * float64(maxVisible) / float64(total)
	}
	thumbH = math.Max(MinThumbHeight, thumbH)

	steps := MaxScroll(total, maxVisible)
	if steps < 1 {
		steps = 1
	}
	ratio := float64(offset) / float64(steps)
	return Rect{
		X: track.X,
		Y: track.Y + ratio*(track.H-thumbH),
		W: track.W,
		H: thumbH,
	}
}
