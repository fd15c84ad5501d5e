package viewport

import (
	"fmt"
	"math"
)

// Viewport is the size of a host element in host pixels plus the device pixel density.
type Viewport struct {
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	PixelDensity float64 `json:"dpr"`
}

// New returns a Viewport with density 1.
func New(width, height int) Viewport {
	return Viewport{Width: width, Height: height, PixelDensity: 1}
}

// Valid reports whether both dimensions are positive.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

// Density returns the pixel density, treating unset values as 1.
func (v Viewport) Density() float64 {
	if v.PixelDensity <= 0 || math.IsNaN(v.PixelDensity) || math.IsInf(v.PixelDensity, 0) {
		return 1
	}
	return v.PixelDensity
}

// WithDensity returns a copy using the given density.
func (v Viewport) WithDensity(d float64) Viewport {
	v.PixelDensity = d
	return v
}

// Device returns the framebuffer size in device pixels.
func (v Viewport) Device() (int, int) {
	if !v.Valid() {
		return 0, 0
	}
	d := v.Density()
	w := int(math.Round(float64(v.Width) * d))
	h := int(math.Round(float64(v.Height) * d))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Center returns the midpoint in host pixels.
func (v Viewport) Center() (float64, float64) {
	return float64(v.Width) / 2, float64(v.Height) / 2
}

// Aspect returns width over height, or 1 for an invalid viewport.
func (v Viewport) Aspect() float64 {
	if !v.Valid() {
		return 1
	}
	return float64(v.Width) / float64(v.Height)
}

func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d@%.2g", v.Width, v.Height, v.Density())
}
