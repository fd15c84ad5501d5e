package ascii

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultGradient is the overlay gradient, centre to edge.
var DefaultGradient = []string{"#ff6188", "#fc9867", "#ffd866"}

// Blend modes for compositing glyph colour over the page background.
const (
	BlendNormal     = "normal"
	BlendDifference = "difference"
)

// Gradient is a set of evenly spaced colour stops.
type Gradient []colorful.Color

// ParseGradient parses hex colour stops.
func ParseGradient(hexes []string) (Gradient, error) {
	if len(hexes) == 0 {
		return nil, fmt.Errorf("ascii: gradient needs at least one stop")
	}
	g := make(Gradient, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("ascii: gradient stop %d: %w", i, err)
		}
		g[i] = c
	}
	return g, nil
}

// At interpolates the gradient at t in [0, 1] in sRGB space.
func (g Gradient) At(t float64) colorful.Color {
	switch len(g) {
	case 0:
		return colorful.Color{R: 1, G: 1, B: 1}
	case 1:
		return g[0]
	}
	t = clamp01(t)
	seg := t * float64(len(g)-1)
	i := int(seg)
	if i >= len(g)-1 {
		return g[len(g)-1]
	}
	return g[i].BlendRgb(g[i+1], seg-float64(i))
}

// Radial evaluates a circular gradient centred in a box of the given aspect
// ratio, reaching the last stop at the farthest corner. u and v are in [0, 1].
func (g Gradient) Radial(u, v, aspect float64) colorful.Color {
	if aspect <= 0 {
		aspect = 1
	}
	dx := (u - 0.5) * aspect
	dy := v - 0.5
	radius := math.Hypot(0.5*aspect, 0.5)
	return g.At(math.Hypot(dx, dy) / radius)
}

// HueRotate applies the CSS hue-rotate filter matrix.
func HueRotate(c colorful.Color, deg float64) colorful.Color {
	rad := deg * math.Pi / 180
	a, b := math.Cos(rad), math.Sin(rad)
	r := (0.213+0.787*a-0.213*b)*c.R + (0.715-0.715*a-0.715*b)*c.G + (0.072-0.072*a+0.928*b)*c.B
	gg := (0.213-0.213*a+0.143*b)*c.R + (0.715+0.285*a+0.140*b)*c.G + (0.072-0.072*a-0.283*b)*c.B
	bb := (0.213-0.213*a-0.787*b)*c.R + (0.715-0.715*a+0.715*b)*c.G + (0.072+0.928*a+0.072*b)*c.B
	return colorful.Color{R: r, G: gg, B: bb}.Clamped()
}

// Blend composites c over bg.
func Blend(mode string, c, bg colorful.Color) colorful.Color {
	if mode == BlendDifference {
		return colorful.Color{
			R: math.Abs(c.R - bg.R),
			G: math.Abs(c.G - bg.G),
			B: math.Abs(c.B - bg.B),
		}
	}
	return c
}

// Overlay is the presentable ASCII layer: glyphs coloured by a radial
// gradient, hue rotated, blended over the page background.
type Overlay struct {
	Grid     Grid
	Hue      float64
	Gradient Gradient
	Blend    string
	// Aspect is the width/height ratio of the area the grid covers.
	Aspect float64
}

// CellColor returns the hue-rotated gradient colour at a cell centre.
func (o *Overlay) CellColor(col, row int) colorful.Color {
	if o.Grid.Empty() {
		return colorful.Color{}
	}
	u := (float64(col) + 0.5) / float64(o.Grid.Cols)
	v := (float64(row) + 0.5) / float64(o.Grid.Rows)
	return HueRotate(o.Gradient.Radial(u, v, o.Aspect), o.Hue)
}

// Composite returns the final cell colour over bg.
func (o *Overlay) Composite(col, row int, bg colorful.Color) colorful.Color {
	return Blend(o.Blend, o.CellColor(col, row), bg)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
