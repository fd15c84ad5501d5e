package damp

import "math"

// Factor is the fraction of the remaining distance covered in dt seconds at
// the given rate. It is 0 for dt <= 0 and approaches 1 as dt grows.
func Factor(rate, dt float64) float64 {
	if dt <= 0 || rate <= 0 {
		return 0
	}
	return 1 - math.Exp(-rate*dt)
}

// Toward moves cur toward target, frame-rate independent.
func Toward(cur, target, rate, dt float64) float64 {
	return cur + (target-cur)*Factor(rate, dt)
}

// RateFromFraction converts a per-frame lerp fraction tuned at fps frames per
// second into an equivalent rate for Factor.
func RateFromFraction(fraction, fps float64) float64 {
	if fraction <= 0 || fps <= 0 {
		return 0
	}
	if fraction >= 1 {
		fraction = 0.999999
	}
	return -math.Log(1-fraction) * fps
}

// Angle smooths an angle in degrees. No wrap-around is applied, so crossing
// the ±180 seam sweeps through the long way.
type Angle struct {
	Deg  float64
	Rate float64
}

// Advance moves the angle toward target and returns the new value.
func (a *Angle) Advance(target, dt float64) float64 {
	a.Deg = Toward(a.Deg, target, a.Rate, dt)
	return a.Deg
}
