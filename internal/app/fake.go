package app

import (
	"math"
	"math/rand"
	"time"
)

// autopilot moves a synthetic pointer along a slow Lissajous orbit.
type autopilot struct {
	rng    *rand.Rand
	phaseX float64
	phaseY float64
}

func newAutopilot() *autopilot {
	return &autopilot{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next advances the orbit by delta seconds and returns a position inside a
// width x height area.
func (f *autopilot) Next(delta, width, height float64) (float64, float64) {
	f.phaseX += delta * 0.7
	f.phaseY += delta * 1.1

	x := 0.5 + 0.4*math.Sin(f.phaseX) + (f.rng.Float64()-0.5)*0.02
	y := 0.5 + 0.4*math.Sin(f.phaseY+0.5) + (f.rng.Float64()-0.5)*0.02

	return clamp01(x) * width, clamp01(y) * height
}
