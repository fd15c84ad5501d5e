package noise

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// Octaves is the fixed number of fbm layers.
const Octaves = 4

// Basis is a continuous 2-D noise primitive returning values in roughly [-1, 1].
type Basis interface {
	Eval2(x, y float64) float64
}

// Perlin is classic 2-D gradient noise with a quintic fade curve.
type Perlin struct{}

// Eval2 implements Basis.
func (Perlin) Eval2(x, y float64) float64 {
	fx0 := x - math.Floor(x)
	fy0 := y - math.Floor(y)
	fx1 := fx0 - 1
	fy1 := fy0 - 1

	ix0 := mod289(math.Floor(x))
	iy0 := mod289(math.Floor(y))
	ix1 := mod289(math.Floor(x) + 1)
	iy1 := mod289(math.Floor(y) + 1)

	n00 := corner(ix0, iy0, fx0, fy0)
	n10 := corner(ix1, iy0, fx1, fy0)
	n01 := corner(ix0, iy1, fx0, fy1)
	n11 := corner(ix1, iy1, fx1, fy1)

	u := fade(fx0)
	v := fade(fy0)
	nx0 := mix(n00, n10, u)
	nx1 := mix(n01, n11, u)
	return 2.3 * mix(nx0, nx1, v)
}

// corner returns the dot product of the hashed gradient at lattice point (ix, iy)
// with the offset (fx, fy).
func corner(ix, iy, fx, fy float64) float64 {
	i := permute(permute(ix) + iy)
	gx := fract(i*(1.0/41.0))*2 - 1
	gy := math.Abs(gx) - 0.5
	gx -= math.Floor(gx + 0.5)
	norm := 1.79284291400159 - 0.85373472095314*(gx*gx+gy*gy)
	return norm * (gx*fx + gy*fy)
}

func mod289(x float64) float64 {
	return x - math.Floor(x*(1.0/289.0))*289.0
}

func permute(x float64) float64 {
	return mod289((x*34.0 + 1.0) * x)
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

// Simplex adapts OpenSimplex noise to Basis.
type Simplex struct {
	noise opensimplex.Noise
}

// NewSimplex returns a seeded OpenSimplex basis.
func NewSimplex(seed int64) *Simplex {
	return &Simplex{noise: opensimplex.New(seed)}
}

// Eval2 implements Basis.
func (s *Simplex) Eval2(x, y float64) float64 {
	return s.noise.Eval2(x, y)
}

// NewBasis resolves a basis by name. Unknown names fall back to Perlin.
func NewBasis(name string, seed int64) Basis {
	switch name {
	case "simplex", "opensimplex":
		return NewSimplex(seed)
	default:
		return Perlin{}
	}
}

// BasisNames lists the selectable noise bases.
func BasisNames() []string {
	return []string{"perlin", "simplex"}
}

func fract(v float64) float64 {
	return v - math.Floor(v)
}

func mix(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// Smoothstep is the GLSL smoothstep. Degenerate edges behave as a step.
func Smoothstep(edge0, edge1, x float64) float64 {
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
