package noise

import "math"

// Cursor is an interaction point in uv space.
type Cursor struct {
	X, Y    float64
	Radius  float64
	Enabled bool
}

// cursorDarken scales the radial falloff subtracted around the cursor.
const cursorDarken = 0.5

// Field is a domain-warped turbulence field.
type Field struct {
	Basis     Basis
	Speed     float64
	Frequency float64
	Amplitude float64
	Color     [3]float64
}

// FBM sums Octaves layers of |noise|, scaling the domain by Frequency and the
// weight by Amplitude after each layer.
func (f *Field) FBM(x, y float64) float64 {
	basis := f.basis()
	value := 0.0
	amp := 1.0
	for i := 0; i < Octaves; i++ {
		value += amp * math.Abs(basis.Eval2(x, y))
		x *= f.Frequency
		y *= f.Frequency
		amp *= f.Amplitude
	}
	return value
}

// Pattern evaluates fbm(p + fbm(p - t*speed)).
func (f *Field) Pattern(x, y, t float64) float64 {
	shift := t * f.Speed
	warp := f.FBM(x-shift, y-shift)
	return f.FBM(x+warp, y+warp)
}

// Intensity is the pattern value darkened around the cursor.
func (f *Field) Intensity(x, y, t float64, c Cursor) float64 {
	v := f.Pattern(x, y, t)
	if c.Enabled {
		dist := math.Hypot(x-c.X, y-c.Y)
		v -= cursorDarken * (1 - Smoothstep(0, c.Radius, dist))
	}
	return v
}

// Shade maps an intensity to colour by mixing black with the base colour.
func (f *Field) Shade(v float64) [3]float64 {
	return [3]float64{f.Color[0] * v, f.Color[1] * v, f.Color[2] * v}
}

func (f *Field) basis() Basis {
	if f.Basis == nil {
		return Perlin{}
	}
	return f.Basis
}

// UV converts a raster pixel (top-left origin) into aspect-corrected,
// centred coordinates with y pointing up.
func UV(px, py float64, width, height int) (float64, float64) {
	w := float64(width)
	h := float64(height)
	u := (px+0.5)/w - 0.5
	v := (h-py-0.5)/h - 0.5
	return u * (w / h), v
}

// PointerUV converts a pointer position in device pixels into the same space as UV.
func PointerUV(px, py float64, width, height int) (float64, float64) {
	w := float64(width)
	h := float64(height)
	u := px/w - 0.5
	v := -(py/h - 0.5)
	return u * (w / h), v
}
