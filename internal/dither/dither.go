package dither

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// ThresholdMatrix is the 8x8 ordered-dither table, row-major.
var ThresholdMatrix = [64]uint8{
	0, 48, 12, 60, 3, 51, 15, 63,
	32, 16, 44, 28, 35, 19, 47, 31,
	8, 56, 4, 52, 11, 59, 7, 55,
	40, 24, 36, 20, 43, 27, 39, 23,
	2, 50, 14, 62, 1, 49, 13, 61,
	34, 18, 46, 30, 33, 17, 45, 29,
	10, 58, 6, 54, 9, 57, 5, 53,
	42, 26, 38, 22, 41, 25, 37, 21,
}

// Params controls quantization.
type Params struct {
	ColorLevels   int
	CellPixelSize int
}

// Validate checks the parameter ranges.
func (p Params) Validate() error {
	if p.ColorLevels < 2 {
		return fmt.Errorf("dither: color levels must be >= 2 (got %d)", p.ColorLevels)
	}
	if p.CellPixelSize < 1 {
		return fmt.Errorf("dither: cell pixel size must be >= 1 (got %d)", p.CellPixelSize)
	}
	return nil
}

// Step is the distance between two quantization levels.
func (p Params) Step() float64 {
	return 1.0 / float64(p.levels()-1)
}

func (p Params) levels() int {
	if p.ColorLevels < 2 {
		return 2
	}
	return p.ColorLevels
}

func (p Params) cell() int {
	if p.CellPixelSize < 1 {
		return 1
	}
	return p.CellPixelSize
}

// Threshold returns the matrix bias in [0, 1) for pixel (x, y).
func Threshold(x, y, cell int) float64 {
	if cell < 1 {
		cell = 1
	}
	cx := mod8(floorDiv(x, cell))
	cy := mod8(floorDiv(y, cell))
	return float64(ThresholdMatrix[cy*8+cx]) / 64.0
}

// Quantize biases each channel by the pixel's threshold and rounds it to the
// nearest of ColorLevels evenly spaced values in [0, 1].
func Quantize(rgb [3]float64, x, y int, p Params) [3]float64 {
	n := float64(p.levels() - 1)
	bias := Threshold(x, y, p.cell()) * p.Step()
	var out [3]float64
	for i, v := range rgb {
		v = clamp01(v + bias)
		out[i] = math.Floor(v*n+0.5) / n
	}
	return out
}

// Pass dithers src into dst. Each cell is sampled at its top-left pixel so the
// output is pixelated at CellPixelSize. dst and src must have equal bounds.
func Pass(dst, src *image.NRGBA, p Params) {
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetNRGBA(x, y, Pixel(src, x, y, p))
		}
	}
}

// Pixel computes the dithered colour of one output pixel.
func Pixel(src *image.NRGBA, x, y int, p Params) color.NRGBA {
	cell := p.cell()
	sx := floorDiv(x, cell) * cell
	sy := floorDiv(y, cell) * cell
	b := src.Bounds()
	if sx < b.Min.X {
		sx = b.Min.X
	}
	if sy < b.Min.Y {
		sy = b.Min.Y
	}
	in := src.NRGBAAt(sx, sy)
	q := Quantize([3]float64{
		float64(in.R) / 255,
		float64(in.G) / 255,
		float64(in.B) / 255,
	}, x, y, p)
	return color.NRGBA{
		R: toByte(q[0]),
		G: toByte(q[1]),
		B: toByte(q[2]),
		A: in.A,
	}
}

func toByte(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod8(v int) int {
	return ((v % 8) + 8) % 8
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
