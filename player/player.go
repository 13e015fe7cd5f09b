// Package player tracks the player position used when adding waypoints. The
// game-client bridge feeds it; without a client it is moved locally.
package player

import (
	"sync/atomic"
	"time"

	"pathkit/typedef"
)

// WalkSpeed is the local movement speed in blocks per second.
const WalkSpeed = 4.317

// Tracker holds the latest known position. It is safe for concurrent use.
type Tracker struct {
	pos     atomic.Pointer[typedef.Position]
	updated atomic.Int64
}

// NewTracker starts at the origin.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.pos.Store(&typedef.Position{})
	return t
}

// Position returns the current position.
func (t *Tracker) Position() typedef.Position {
	return *t.pos.Load()
}

// Set replaces the position and records the time of the update.
func (t *Tracker) Set(p typedef.Position) {
	t.pos.Store(&p)
	t.updated.Store(time.Now().UnixNano())
}

// LastUpdate returns when Set was last called, or the zero time.
func (t *Tracker) LastUpdate() time.Time {
	n := t.updated.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// Walk moves the player along the axes for the held movement keys: forward is
// -Z, back +Z, left -X and right +X. Opposite keys cancel out.
func (t *Tracker) Walk(held []typedef.ForcedKey, dt time.Duration) {
	var dx, dz float64
	for _, k := range held {
		switch k {
		case typedef.KeyForward:
			dz--
		case typedef.KeyBack:
			dz++
		case typedef.KeyLeft:
			dx--
		case typedef.KeyRight:
			dx++
		}
	}
	if dx == 0 && dz == 0 {
		return
	}
	step := WalkSpeed * dt.Seconds()
	p := t.Position()
	p.X += dx * step
	p.Z += dz * step
	t.pos.Store(&p)
}
