package dither

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestThresholdMatrixIsPermutation(t *testing.T) {
	var seen [64]bool
	for i, v := range ThresholdMatrix {
		if v > 63 {
			t.Fatalf("entry %d out of range: %d", i, v)
		}
		if seen[v] {
			t.Fatalf("duplicate value %d", v)
		}
		seen[v] = true
	}
	if ThresholdMatrix[0] != 0 {
		t.Fatalf("matrix(0,0)=%d want 0", ThresholdMatrix[0])
	}
	if ThresholdMatrix[7*8+7] != 21 {
		t.Fatalf("matrix(7,7)=%d want 21", ThresholdMatrix[63])
	}
}

func TestThresholdRespectsCellSize(t *testing.T) {
	if Threshold(0, 0, 2) != Threshold(1, 1, 2) {
		t.Fatalf("pixels in the same cell must share a threshold")
	}
	if got, want := Threshold(2, 0, 2), 48.0/64.0; got != want {
		t.Fatalf("threshold(2,0,cell=2)=%f want %f", got, want)
	}
	if Threshold(16, 0, 2) != Threshold(0, 0, 2) {
		t.Fatalf("matrix should tile every 8 cells")
	}
	if Threshold(-1, -1, 1) != float64(ThresholdMatrix[63])/64 {
		t.Fatalf("negative coordinates should wrap")
	}
}

func TestQuantizeFourLevels(t *testing.T) {
	p := Params{ColorLevels: 4, CellPixelSize: 1}
	allowed := []float64{0, 1.0 / 3, 2.0 / 3, 1}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			for _, in := range []float64{0, 0.1, 0.33, 0.5, 0.66, 0.9, 1, 1.4, -0.2} {
				out := Quantize([3]float64{in, in / 2, 1 - in}, x, y, p)
				for _, v := range out {
					if !isOneOf(v, allowed) {
						t.Fatalf("quantized value %f not in %v", v, allowed)
					}
				}
			}
		}
	}
}

func TestQuantizeDeterministic(t *testing.T) {
	p := Params{ColorLevels: 4, CellPixelSize: 2}
	in := [3]float64{0.42, 0.17, 0.93}
	if Quantize(in, 5, 3, p) != Quantize(in, 5, 3, p) {
		t.Fatalf("same pixel produced different output")
	}
}

func TestPassTwoLevelsIsBinary(t *testing.T) {
	const w, h = 64, 16
	src := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g := uint8(x * 255 / (w - 1))
			src.SetNRGBA(x, y, color.NRGBA{R: g, G: g, B: 255 - g, A: 255})
		}
	}
	dst := image.NewNRGBA(src.Bounds())
	Pass(dst, src, Params{ColorLevels: 2, CellPixelSize: 2})
	blacks, whites := 0, 0
	for i := 0; i < len(dst.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			switch dst.Pix[i+c] {
			case 0:
				blacks++
			case 255:
				whites++
			default:
				t.Fatalf("non-binary channel value %d", dst.Pix[i+c])
			}
		}
	}
	if blacks == 0 || whites == 0 {
		t.Fatalf("gradient should produce both levels, blacks=%d whites=%d", blacks, whites)
	}
}

func TestPassPixelatesCells(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	dst := image.NewNRGBA(src.Bounds())
	Pass(dst, src, Params{ColorLevels: 2, CellPixelSize: 2})
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if dst.NRGBAAt(x, y).R != 255 {
				t.Fatalf("cell (0,0) pixel (%d,%d) should take the cell origin colour", x, y)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	if err := (Params{ColorLevels: 1, CellPixelSize: 1}).Validate(); err == nil {
		t.Fatalf("expected error for one colour level")
	}
	if err := (Params{ColorLevels: 4, CellPixelSize: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero cell size")
	}
	if err := (Params{ColorLevels: 4, CellPixelSize: 2}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func isOneOf(v float64, set []float64) bool {
	for _, s := range set {
		if math.Abs(v-s) < 1e-12 {
			return true
		}
	}
	return false
}
