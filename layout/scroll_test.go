package layout

import (
	"math"
	"math/rand"
	"testing"
)

func TestScrollScenario(t *testing.T) {
	offset := Scroll(0, -3, 12, 5)
	if offset != 3 {
		t.Fatalf("expected offset 3, got %d", offset)
	}
	for i := 0; i < 5; i++ {
		offset = Scroll(offset, -3, 12, 5)
	}
	if offset != 7 {
		t.Fatalf("expected clamp at 7, got %d", offset)
	}
	offset = Scroll(offset, 100, 12, 5)
	if offset != 0 {
		t.Fatalf("expected clamp at 0, got %d", offset)
	}
}

func TestScrollAlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		total := rng.Intn(50)
		maxVisible := rng.Intn(20)
		offset := rng.Intn(60) - 5
		delta := rng.Intn(41) - 20
		got := Scroll(offset, delta, total, maxVisible)
		if got < 0 || got > MaxScroll(total, maxVisible) {
			t.Fatalf("Scroll(%d,%d,%d,%d) = %d out of range", offset, delta, total, maxVisible, got)
		}
	}
}

func TestMaxScroll(t *testing.T) {
	if MaxScroll(3, 8) != 0 || MaxScroll(12, 5) != 7 || MaxScroll(0, 0) != 0 {
		t.Fatalf("unexpected MaxScroll values")
	}
}

func TestThumbGeometry(t *testing.T) {
	track := Rect{X: 10, Y: 100, W: 5, H: 400}

	top := Thumb(track, 0, 20, 5)
	if !near(top.H, 100) || !near(top.Y, 100) {
		t.Fatalf("unexpected top thumb %+v", top)
	}
	bottom := Thumb(track, 15, 20, 5)
	if !near(bottom.Y+bottom.H, track.Y+track.H) {
		t.Fatalf("thumb at max offset should touch the track end, got %+v", bottom)
	}

	tiny := Thumb(track, 0, 1000, 5)
	if !near(tiny.H, MinThumbHeight) {
		t.Fatalf("thumb must not shrink below %d, got %v", MinThumbHeight, tiny.H)
	}
}

func TestScrollTrackInsideBox(t *testing.T) {
	box := Box(1920, 1080)
	track := ScrollTrack(box)
	if track.X+track.W > box.X+box.W || track.X < box.X {
		t.Fatalf("track %+v outside box %+v", track, box)
	}
	if !near(track.H, box.H/1.3) || !near(track.Y, box.Y+box.H/8) {
		t.Fatalf("unexpected track %+v", track)
	}
}

func TestScrollExtremeDeltas(t *testing.T) {
	if got := Scroll(2, math.MinInt, 12, 5); got != 7 {
		t.Fatalf("huge downward delta should land on the last page, got %d", got)
	}
	if got := Scroll(2, math.MaxInt, 12, 5); got != 0 {
		t.Fatalf("huge upward delta should land on the top, got %d", got)
	}
	if got := Scroll(0, math.MinInt, 3, 5); got != 0 {
		t.Fatalf("a list that fits never scrolls, got %d", got)
	}
}
