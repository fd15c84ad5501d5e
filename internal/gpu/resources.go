package gpu

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Target is an offscreen colour buffer that can be read back into CPU memory.
type Target struct {
	ctx *Context
	img *image.NRGBA
}

// NewTarget allocates an offscreen target.
func (c *Context) NewTarget(width, height int) (*Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("gpu: invalid target %dx%d", width, height)
	}
	t := &Target{ctx: c, img: image.NewNRGBA(image.Rect(0, 0, width, height))}
	if err := c.track(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Image returns the target's backing image. Nil once released.
func (t *Target) Image() *image.NRGBA {
	return t.img
}

// Size returns the target dimensions.
func (t *Target) Size() (int, int) {
	if t.img == nil {
		return 0, 0
	}
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize reallocates the target when its size changes.
func (t *Target) Resize(width, height int) error {
	if t.img == nil {
		return ErrReleased
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("gpu: invalid target %dx%d", width, height)
	}
	if w, h := t.Size(); w == width && h == height {
		return nil
	}
	t.img = image.NewNRGBA(image.Rect(0, 0, width, height))
	return nil
}

// Clear sets every pixel to transparent black.
func (t *Target) Clear() {
	if t.img == nil {
		return
	}
	clear(t.img.Pix)
}

// ReadPixels copies the raw RGBA bytes of the target into dst, growing it when
// needed, and returns the filled slice.
func (t *Target) ReadPixels(dst []byte) ([]byte, error) {
	if t.img == nil {
		return dst[:0], ErrReleased
	}
	n := len(t.img.Pix)
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	copy(dst, t.img.Pix)
	return dst, nil
}

// Release frees the target.
func (t *Target) Release() {
	t.release()
	t.ctx.untrack(t)
}

func (t *Target) release() {
	t.img = nil
}

// Texture is a sampled image with nearest filtering and clamp-to-edge wrapping.
// V is flipped so that v=0 is the bottom row of the source image.
type Texture struct {
	ctx *Context
	img *image.NRGBA
}

// NewTexture uploads src into a new texture.
func (c *Context) NewTexture(src image.Image) (*Texture, error) {
	t := &Texture{ctx: c}
	if err := t.Update(src); err != nil {
		return nil, err
	}
	if err := c.track(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update replaces the texture contents.
func (t *Texture) Update(src image.Image) error {
	if t.ctx.released {
		return ErrReleased
	}
	b := src.Bounds()
	if b.Empty() {
		return fmt.Errorf("gpu: empty texture source")
	}
	img := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(img, img.Bounds(), src, b.Min, draw.Src)
	t.img = img
	return nil
}

// Size returns the texture dimensions.
func (t *Texture) Size() (int, int) {
	if t.img == nil {
		return 0, 0
	}
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

// Sample returns the texel at (u, v).
func (t *Texture) Sample(u, v float64) color.NRGBA {
	if t.img == nil {
		return color.NRGBA{}
	}
	w, h := t.Size()
	x := clampInt(int(u*float64(w)), 0, w-1)
	y := clampInt(int((1-v)*float64(h)), 0, h-1)
	i := t.img.PixOffset(x, y)
	p := t.img.Pix[i : i+4 : i+4]
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Release frees the texture.
func (t *Texture) Release() {
	t.release()
	t.ctx.untrack(t)
}

func (t *Texture) release() {
	t.img = nil
}

// Shader computes the colour of pixel (x, y) from a uniform snapshot.
type Shader[U any] func(u *U, x, y int) color.NRGBA

// Program is a per-pixel shader bound to a context.
type Program[U any] struct {
	ctx   *Context
	name  string
	shade Shader[U]
}

// NewProgram registers a shader with the context.
func NewProgram[U any](c *Context, name string, shade Shader[U]) (*Program[U], error) {
	if shade == nil {
		return nil, fmt.Errorf("gpu: program %q has no shader", name)
	}
	p := &Program[U]{ctx: c, name: name, shade: shade}
	if err := c.track(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Name returns the program name.
func (p *Program[U]) Name() string {
	return p.name
}

// Draw runs the shader for every pixel of dst using the uniform snapshot u.
func (p *Program[U]) Draw(dst *image.NRGBA, u U) error {
	if p.shade == nil || p.ctx.released {
		return ErrReleased
	}
	if dst == nil {
		return fmt.Errorf("gpu: program %q has no destination", p.name)
	}
	b := dst.Bounds()
	width := b.Dx()
	shade := p.shade
	p.ctx.Rows(b.Dy(), func(y int) {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+width*4]
		for x := 0; x < width; x++ {
			c := shade(&u, x, y)
			o := x * 4
			row[o+0] = c.R
			row[o+1] = c.G
			row[o+2] = c.B
			row[o+3] = c.A
		}
	})
	return nil
}

// Release frees the program.
func (p *Program[U]) Release() {
	p.release()
	p.ctx.untrack(p)
}

func (p *Program[U]) release() {
	p.shade = nil
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
