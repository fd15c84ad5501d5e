package sdf

import (
	"testing"

	"github.com/chewxy/math32"
)

func near(a, b float32) bool {
	return math32.Abs(a-b) < 1e-5
}

func TestRoundRect(t *testing.T) {
	b := Vec{1, 1}
	if d := RoundRect(Vec{}, b, 0); !near(d, -1) {
		t.Fatalf("centre distance=%f want -1", d)
	}
	if d := RoundRect(Vec{2, 0}, b, 0); !near(d, 1) {
		t.Fatalf("edge distance=%f want 1", d)
	}
	if d := RoundRect(Vec{1, 0}, b, 0.3); !near(d, 0) {
		t.Fatalf("boundary distance=%f want 0", d)
	}
	sharp := RoundRect(Vec{1.2, 1.2}, b, 0)
	round := RoundRect(Vec{1.2, 1.2}, b, 0.5)
	if round <= sharp {
		t.Fatalf("rounding should move corners inwards: sharp=%f round=%f", sharp, round)
	}
}

func TestCircleIsScaled(t *testing.T) {
	if d := Circle(Vec{3, 4}, Vec{}); !near(d, 10) {
		t.Fatalf("circle distance=%f want 10", d)
	}
}

func TestFillMask(t *testing.T) {
	if v := Fill(0, 0.25, 1); v <= 0.5 {
		t.Fatalf("fill at centre=%f", v)
	}
	if v := Fill(5, 0.25, 1); v != 0 {
		t.Fatalf("fill far away=%f", v)
	}
	if v := Fill(0.25, 0.25, 1); !near(v, 0.5) {
		t.Fatalf("fill at size=%f want 0.5", v)
	}
}

func TestStrokeAA(t *testing.T) {
	on := StrokeAA(0, 0, 0.1, 0, 0.01)
	off := StrokeAA(1, 0, 0.1, 0, 0.01)
	if on != 1 || off != 0 {
		t.Fatalf("stroke on=%f off=%f", on, off)
	}
	soft := StrokeAA(0.06, 0, 0.1, 0.2, 0.01)
	hard := StrokeAA(0.06, 0, 0.1, 0, 0.01)
	if soft <= hard {
		t.Fatalf("edge softness should spread coverage: soft=%f hard=%f", soft, hard)
	}
}

func TestPolyTriangle(t *testing.T) {
	inside := Poly(Vec{0, 0}, 0.3, 3)
	outside := Poly(Vec{0, 1}, 0.3, 3)
	if inside >= 0 || outside <= 0 {
		t.Fatalf("triangle inside=%f outside=%f", inside, outside)
	}
}

func TestCoordCentresShorterAxis(t *testing.T) {
	res := Vec{200, 100}
	c := coord(Vec{100, 50}, res)
	if !near(c.X, 0) || !near(c.Y, 0) {
		t.Fatalf("centre maps to %v", c)
	}
	top := coord(Vec{100, 100}, res)
	if !near(top.Y, 0.5) {
		t.Fatalf("top edge maps to %v", top)
	}
}

func evaluate(f *Field, u *Uniforms) {
	f.Resize(u.Width, u.Height)
	for y := 0; y < u.Height; y++ {
		f.EvaluateRow(u, y)
	}
}

func TestStrokeThickensNearCursor(t *testing.T) {
	u := &Uniforms{
		Shape:      Shape{Size: 1.2, Roundness: 0.4, Border: 0.05, CircleSize: 0.3, CircleEdge: 0.5},
		Width:      200,
		Height:     200,
		PixelRatio: 1,
	}
	covered := func() int {
		var f Field
		evaluate(&f, u)
		n := 0
		for y := 0; y < u.Height; y++ {
			for x := 0; x < u.Width; x++ {
				if f.Alpha(u, x, y) > 0.01 {
					n++
				}
			}
		}
		return n
	}

	u.Mouse = Vec{-10000, -10000}
	far := covered()
	u.Mouse = Vec{100, 43}
	close := covered()
	if far == 0 {
		t.Fatalf("outline should be visible without a cursor")
	}
	if close <= far {
		t.Fatalf("cursor should widen the stroke: far=%d near=%d", far, close)
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (Shape{Variation: 4}).Validate(); err == nil {
		t.Fatalf("expected error for variation 4")
	}
	for v := VariationRoundRect; v <= VariationTriangle; v++ {
		if err := (Shape{Variation: v}).Validate(); err != nil {
			t.Fatalf("variation %d: %v", v, err)
		}
	}
}

func TestAllVariationsProduceCoverage(t *testing.T) {
	for v := VariationRoundRect; v <= VariationTriangle; v++ {
		u := &Uniforms{
			Shape:      Shape{Variation: v, Size: 1.7, Roundness: 0.4, Border: 0.012, CircleSize: 0.25, CircleEdge: 1},
			Mouse:      Vec{50, 50},
			Width:      100,
			Height:     100,
			PixelRatio: 1,
		}
		var f Field
		evaluate(&f, u)
		total := float32(0)
		for y := 0; y < u.Height; y++ {
			for x := 0; x < u.Width; x++ {
				a := f.Alpha(u, x, y)
				if a < 0 || a > 1 {
					t.Fatalf("variation %d alpha %f out of range", v, a)
				}
				total += a
			}
		}
		if total == 0 {
			t.Fatalf("variation %d drew nothing", v)
		}
	}
}

func TestRoundRectHonoursSizeAndRoundness(t *testing.T) {
	const size = 1.2
	edge := Vec{0.5 + size/4.2, 0.5}
	s := Shape{Size: size, Roundness: 0.4}
	if d := s.distance(edge); math32.Abs(d) > 1e-4 {
		t.Fatalf("side midpoint distance=%f want 0", d)
	}
	if d := (Shape{Size: 2 * size, Roundness: 0.4}).distance(edge); d >= 0 {
		t.Fatalf("a larger size should cover the old edge, distance=%f", d)
	}
	corner := Vec{0.5 + size/4.2, 0.5 + size/4.2}
	sharp := Shape{Size: size}.distance(corner)
	round := Shape{Size: size, Roundness: 0.4}.distance(corner)
	if math32.Abs(sharp) > 1e-4 || round <= sharp {
		t.Fatalf("corner distance sharp=%f round=%f", sharp, round)
	}
}
