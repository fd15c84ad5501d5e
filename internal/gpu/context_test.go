package gpu

import (
	"errors"
	"image"
	"image/color"
	"sync/atomic"
	"testing"
)

func TestNewRejectsEmptySurface(t *testing.T) {
	for _, size := range [][2]int{{0, 10}, {10, 0}, {-1, -1}} {
		if _, err := New(size[0], size[1]); err == nil {
			t.Fatalf("expected error for %dx%d", size[0], size[1])
		}
	}
}

func TestProgramDrawCoversEveryPixel(t *testing.T) {
	c, err := New(7, 5)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer c.Release()

	type uniforms struct{ base uint8 }
	var calls atomic.Int64
	p, err := NewProgram(c, "gradient", func(u *uniforms, x, y int) color.NRGBA {
		calls.Add(1)
		return color.NRGBA{R: u.base + uint8(x), G: uint8(y), A: 255}
	})
	if err != nil {
		t.Fatalf("program: %v", err)
	}
	fb := c.Framebuffer()
	if err := p.Draw(fb, uniforms{base: 10}); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if calls.Load() != 35 {
		t.Fatalf("shader calls=%d want=35", calls.Load())
	}
	got := fb.NRGBAAt(6, 4)
	if got.R != 16 || got.G != 4 || got.A != 255 {
		t.Fatalf("pixel (6,4)=%v", got)
	}
}

func TestReleaseFreesEverything(t *testing.T) {
	c, err := New(4, 4)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := c.NewTarget(2, 2); err != nil {
		t.Fatalf("target: %v", err)
	}
	tex, err := c.NewTexture(image.NewNRGBA(image.Rect(0, 0, 3, 3)))
	if err != nil {
		t.Fatalf("texture: %v", err)
	}
	if _, err := NewProgram(c, "noop", func(_ *struct{}, _, _ int) color.NRGBA { return color.NRGBA{} }); err != nil {
		t.Fatalf("program: %v", err)
	}
	if c.Live() != 3 {
		t.Fatalf("live=%d want=3", c.Live())
	}
	tex.Release()
	if c.Live() != 2 {
		t.Fatalf("live after texture release=%d want=2", c.Live())
	}
	c.Release()
	if c.Live() != 0 {
		t.Fatalf("live after release=%d", c.Live())
	}
	if _, err := c.NewTarget(1, 1); !errors.Is(err, ErrReleased) {
		t.Fatalf("expected ErrReleased, got %v", err)
	}
	if err := c.Resize(2, 2); !errors.Is(err, ErrReleased) {
		t.Fatalf("expected ErrReleased on resize, got %v", err)
	}
}

func TestTargetReadPixels(t *testing.T) {
	c, _ := New(1, 1)
	defer c.Release()
	tg, err := c.NewTarget(2, 1)
	if err != nil {
		t.Fatalf("target: %v", err)
	}
	tg.Image().SetNRGBA(1, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	pix, err := tg.ReadPixels(nil)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []byte{0, 0, 0, 0, 1, 2, 3, 4}
	if string(pix) != string(want) {
		t.Fatalf("pixels=%v want=%v", pix, want)
	}
	if err := tg.Resize(3, 2); err != nil {
		t.Fatalf("resize: %v", err)
	}
	pix, _ = tg.ReadPixels(pix)
	if len(pix) != 3*2*4 {
		t.Fatalf("readback length=%d after resize", len(pix))
	}
}

func TestTextureSampleFlipsV(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	c, _ := New(1, 1)
	defer c.Release()
	tex, err := c.NewTexture(src)
	if err != nil {
		t.Fatalf("texture: %v", err)
	}
	if got := tex.Sample(0.5, 0.9); got.R != 255 {
		t.Fatalf("top of texture should be red, got %v", got)
	}
	if got := tex.Sample(0.5, 0.1); got.B != 255 {
		t.Fatalf("bottom of texture should be blue, got %v", got)
	}
	if got := tex.Sample(-4, 7); got.R != 255 {
		t.Fatalf("clamp to edge failed, got %v", got)
	}
}

func TestRowsVisitsEachRowOnce(t *testing.T) {
	c, _ := New(1, 1)
	defer c.Release()
	seen := make([]atomic.Int32, 100)
	c.Rows(len(seen), func(y int) { seen[y].Add(1) })
	for y := range seen {
		if seen[y].Load() != 1 {
			t.Fatalf("row %d visited %d times", y, seen[y].Load())
		}
	}
}
