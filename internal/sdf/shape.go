package sdf

import "fmt"

// Variations supported by Shape.
const (
	VariationRoundRect = iota
	VariationDisk
	VariationRing
	VariationTriangle
)

// Shape describes the outline drawn around the cursor mask.
type Shape struct {
	Variation  int
	Size       float32
	Roundness  float32
	Border     float32
	CircleSize float32
	CircleEdge float32
}

// Validate rejects unknown variations.
func (s Shape) Validate() error {
	if s.Variation < VariationRoundRect || s.Variation > VariationTriangle {
		return fmt.Errorf("sdf: unknown variation %d", s.Variation)
	}
	return nil
}

// Uniforms is a per-frame snapshot of the renderer inputs.
type Uniforms struct {
	Shape Shape
	// Mouse is the damped pointer in host pixels, top-left origin.
	Mouse Vec
	// Width and Height are the raster size in device pixels.
	Width, Height int
	PixelRatio    float32
}

// Field holds the per-pixel distance and cursor mask for one raster.
type Field struct {
	width  int
	height int
	dist   []float32
	mask   []float32
}

// Resize reallocates the buffers for a width x height raster.
func (f *Field) Resize(width, height int) {
	if width == f.width && height == f.height {
		return
	}
	f.width = width
	f.height = height
	f.dist = make([]float32, width*height)
	f.mask = make([]float32, width*height)
}

// Size returns the raster size.
func (f *Field) Size() (int, int) {
	return f.width, f.height
}

// EvaluateRow fills distance and mask values for row y.
func (f *Field) EvaluateRow(u *Uniforms, y int) {
	if y < 0 || y >= f.height {
		return
	}
	res := Vec{float32(u.Width), float32(u.Height)}
	mouse := coord(u.Mouse.Scale(u.PixelRatio), res).Mul(Vec{1, -1}).AddScalar(0.5)
	fy := float32(f.height-y) - 0.5
	row := y * f.width
	for x := 0; x < f.width; x++ {
		st := coord(Vec{float32(x) + 0.5, fy}, res).AddScalar(0.5)
		f.mask[row+x] = Fill(Circle(st, mouse), u.Shape.CircleSize, u.Shape.CircleEdge)
		f.dist[row+x] = u.Shape.distance(st)
	}
}

// Alpha returns the coverage of pixel (x, y). Rows y and y+1 must already be
// evaluated.
func (f *Field) Alpha(u *Uniforms, x, y int) float32 {
	i := y*f.width + x
	d := f.dist[i]
	mask := f.mask[i]
	s := u.Shape
	switch s.Variation {
	case VariationDisk:
		return clamp01(Fill(d, 0.6, mask) * 1.2)
	case VariationRing:
		return clamp01(StrokeAA(d, 0.58, 0.02, mask, f.filterWidth(x, y)) * 4)
	case VariationTriangle:
		return clamp01(Fill(d, 0.05, mask) * 1.4)
	default:
		return clamp01(StrokeAA(d, 0, s.Border, mask, f.filterWidth(x, y)) * 4)
	}
}

// filterWidth approximates dFdx/dFdy with differences to the neighbouring pixels.
func (f *Field) filterWidth(x, y int) float32 {
	i := y*f.width + x
	var dx, dy float32
	switch {
	case x+1 < f.width:
		dx = f.dist[i+1] - f.dist[i]
	case x > 0:
		dx = f.dist[i] - f.dist[i-1]
	}
	switch {
	case y+1 < f.height:
		dy = f.dist[i+f.width] - f.dist[i]
	case y > 0:
		dy = f.dist[i] - f.dist[i-f.width]
	}
	return FilterWidth(dx, dy)
}

func (s Shape) distance(st Vec) float32 {
	switch s.Variation {
	case VariationDisk, VariationRing:
		return Circle(st, Vec{0.5, 0.5})
	case VariationTriangle:
		return Poly(st.Sub(Vec{0.5, 0.45}), 0.3, 3)
	default:
		p := st.AddScalar(-0.5).Scale(4.2)
		return RoundRect(p, Vec{s.Size, s.Size}, s.Roundness)
	}
}

// coord maps a y-up pixel position into a square, centred space where the
// shorter axis spans [-0.5, 0.5] and x is mirrored.
func coord(p, res Vec) Vec {
	p = Vec{p.X / res.X, p.Y / res.Y}
	if res.X > res.Y {
		p.X *= res.X / res.Y
		p.X += (res.Y - res.X) / res.Y / 2
	} else {
		p.Y *= res.Y / res.X
		p.Y += (res.X - res.Y) / res.X / 2
	}
	p = p.AddScalar(-0.5)
	return p.Mul(Vec{-1, 1})
}
