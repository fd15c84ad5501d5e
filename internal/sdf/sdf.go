package sdf

import "github.com/chewxy/math32"

const (
	pi    = math32.Pi
	twoPi = 2 * math32.Pi
)

// invSqrt2 scales the derivative length to a half-pixel filter width.
const invSqrt2 = 0.70710678118654757

// Vec is a 2-D vector.
type Vec struct {
	X, Y float32
}

func (v Vec) Sub(o Vec) Vec {
	return Vec{v.X - o.X, v.Y - o.Y}
}

func (v Vec) Add(o Vec) Vec {
	return Vec{v.X + o.X, v.Y + o.Y}
}

func (v Vec) Scale(f float32) Vec {
	return Vec{v.X * f, v.Y * f}
}

func (v Vec) Mul(o Vec) Vec {
	return Vec{v.X * o.X, v.Y * o.Y}
}

func (v Vec) Abs() Vec {
	return Vec{math32.Abs(v.X), math32.Abs(v.Y)}
}

func (v Vec) Max(o Vec) Vec {
	return Vec{math32.Max(v.X, o.X), math32.Max(v.Y, o.Y)}
}

func (v Vec) Len() float32 {
	return math32.Hypot(v.X, v.Y)
}

func (v Vec) AddScalar(f float32) Vec {
	return Vec{v.X + f, v.Y + f}
}

// RoundRect is the signed distance from p to a box with half extents b and
// corner radius r, centred at the origin.
func RoundRect(p, b Vec, r float32) float32 {
	d := p.Abs().Sub(b).AddScalar(r)
	return math32.Min(math32.Max(d.X, d.Y), 0) + d.Max(Vec{}).Len() - r
}

// Circle returns twice the distance from p to c. It drives falloff masks.
func Circle(p, c Vec) float32 {
	return p.Sub(c).Len() * 2
}

// Poly is the distance to a regular polygon with the given number of sides,
// offset by w.
func Poly(p Vec, w float32, sides int) float32 {
	a := math32.Atan2(p.X, p.Y) + pi
	r := twoPi / float32(sides)
	d := math32.Cos(math32.Floor(0.5+a/r)*r-a) * p.Len()
	return d*2 - w
}

// Smoothstep is the GLSL smoothstep; equal edges behave as a step.
func Smoothstep(edge0, edge1, x float32) float32 {
	if edge1 <= edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := (x - edge0) / (edge1 - edge0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

// Fill is a soft disk mask: 1 inside size, 0 outside, blended over edge.
func Fill(d, size, edge float32) float32 {
	return 1 - Smoothstep(size-edge, size+edge, d)
}

// Stroke is a soft band of width w centred on size.
func Stroke(x, size, w, edge float32) float32 {
	return StrokeAA(x, size, w, edge, 0)
}

// StrokeAA is Stroke widened by a screen-space filter width.
func StrokeAA(x, size, w, edge, afwidth float32) float32 {
	lo := size - edge - afwidth
	hi := size + edge + afwidth
	d := Smoothstep(lo, hi, x+w*0.5) - Smoothstep(lo, hi, x-w*0.5)
	return clamp01(d)
}

// FilterWidth returns the anti-aliasing width from screen-space derivatives.
func FilterWidth(dx, dy float32) float32 {
	return math32.Hypot(dx, dy) * invSqrt2
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
