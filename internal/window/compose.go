package window

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/guidoenr/backdrop/internal/effect"
)

// canvas flattens frames into an opaque RGBA buffer for upload. Its pixel
// bytes match the ABGR8888 texture layout on little-endian machines.
type canvas struct {
	img  *image.RGBA
	face font.Face
}

func newCanvas() *canvas {
	return &canvas{face: basicfont.Face7x13}
}

// Compose draws f over its background. Pixel frames set the canvas size;
// overlay frames are drawn into a width x height canvas.
func (c *canvas) Compose(f effect.Frame, width, height int) *image.RGBA {
	if f.Image != nil {
		b := f.Image.Bounds()
		width, height = b.Dx(), b.Dy()
	}
	if width <= 0 || height <= 0 {
		return nil
	}
	if c.img == nil || c.img.Bounds().Dx() != width || c.img.Bounds().Dy() != height {
		c.img = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	r, g, b := f.Background.Clamped().RGB255()
	bg := color.RGBA{R: r, G: g, B: b, A: 255}
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	switch {
	case f.Image != nil:
		draw.Draw(c.img, c.img.Bounds(), f.Image, f.Image.Bounds().Min, draw.Over)
	case f.Overlay != nil:
		c.drawOverlay(f)
	}
	return c.img
}

func (c *canvas) drawOverlay(f effect.Frame) {
	o := f.Overlay
	if o.Grid.Empty() {
		return
	}
	b := c.img.Bounds()
	cellW := b.Dx() / o.Grid.Cols
	cellH := b.Dy() / o.Grid.Rows
	if cellW < 1 || cellH < 1 {
		return
	}
	ascent := c.face.Metrics().Ascent.Ceil()
	d := &font.Drawer{Dst: c.img, Face: c.face}
	for row := 0; row < o.Grid.Rows; row++ {
		for col := 0; col < o.Grid.Cols; col++ {
			glyph := o.Grid.Rune(col, row)
			if glyph == ' ' {
				continue
			}
			r, g, bl := o.Composite(col, row, f.Background).Clamped().RGB255()
			d.Src = image.NewUniform(color.RGBA{R: r, G: g, B: bl, A: 255})
			d.Dot = fixed.P(col*cellW, row*cellH+ascent)
			d.DrawString(string(glyph))
		}
	}
}
