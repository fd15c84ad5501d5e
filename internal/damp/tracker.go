package damp

import (
	"math"
	"sync"
)

// Point is a position in host pixels.
type Point struct {
	X, Y float64
}

// PointerState is the raw and damped pointer plus the viewport centre.
type PointerState struct {
	Raw    Point
	Damped Point
	Center Point
}

// Snapshot is the immutable per-frame view of a PointerState.
type Snapshot struct {
	PointerState
	DX, DY float64
}

// Angle returns atan2(raw - center) in degrees.
func (s Snapshot) Angle() float64 {
	return math.Atan2(s.Raw.Y-s.Center.Y, s.Raw.X-s.Center.X) * 180 / math.Pi
}

// Tracker damps a pointer position. Set and Resize may be called from event
// goroutines; Advance is called once per frame.
type Tracker struct {
	mu    sync.Mutex
	rate  float64
	state PointerState
}

// NewTracker returns a tracker with raw, damped and centre at the middle of a
// width x height area.
func NewTracker(rate float64, width, height int) *Tracker {
	t := &Tracker{rate: rate}
	t.Resize(width, height)
	t.state.Raw = t.state.Center
	t.state.Damped = t.state.Center
	return t
}

// Rate returns the damping rate.
func (t *Tracker) Rate() float64 {
	return t.rate
}

// Set writes the raw target.
func (t *Tracker) Set(x, y float64) {
	t.mu.Lock()
	t.state.Raw = Point{x, y}
	t.mu.Unlock()
}

// Resize recomputes the centre.
func (t *Tracker) Resize(width, height int) {
	t.mu.Lock()
	t.state.Center = Point{float64(width) / 2, float64(height) / 2}
	t.mu.Unlock()
}

// Reset snaps raw and damped to p.
func (t *Tracker) Reset(p Point) {
	t.mu.Lock()
	t.state.Raw = p
	t.state.Damped = p
	t.mu.Unlock()
}

// Advance steps the damped position by dt seconds.
func (t *Tracker) Advance(dt float64) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	f := Factor(t.rate, dt)
	t.state.Damped.X += (t.state.Raw.X - t.state.Damped.X) * f
	t.state.Damped.Y += (t.state.Raw.Y - t.state.Damped.Y) * f
	return t.snapshot()
}

// Snapshot returns the current state without advancing.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

func (t *Tracker) snapshot() Snapshot {
	s := t.state
	return Snapshot{
		PointerState: s,
		DX:           s.Raw.X - s.Center.X,
		DY:           s.Raw.Y - s.Center.Y,
	}
}
