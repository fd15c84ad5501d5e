package textmesh

import (
	"fmt"
	"image"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// padding around the rendered string, in pixels.
const padding = 10

// Spec describes the text drawn onto the plane.
type Spec struct {
	Text       string
	Font       string
	SizePx     float64
	Color      string
	BaseHeight float64
}

// Validate checks sizes and colour.
func (s Spec) Validate() error {
	if s.SizePx <= 0 {
		return fmt.Errorf("textmesh: text size must be > 0 (got %.1f)", s.SizePx)
	}
	if s.BaseHeight <= 0 {
		return fmt.Errorf("textmesh: plane height must be > 0 (got %.1f)", s.BaseHeight)
	}
	if _, err := colorful.Hex(s.Color); err != nil {
		return fmt.Errorf("textmesh: text colour: %w", err)
	}
	return nil
}

// Render rasterizes text into a transparent image with 10px padding on every
// side. The result is at least 1x1 even for empty text.
func Render(face font.Face, text string, col color.Color) *image.NRGBA {
	m := face.Metrics()
	width := font.MeasureString(face, text).Ceil() + 2*padding
	height := (m.Ascent + m.Descent).Ceil() + 2*padding
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(padding), Y: fixed.I(padding) + m.Ascent},
	}
	d.DrawString(text)
	return img
}

// TextColor parses a hex colour, falling back to white.
func TextColor(hex string) color.NRGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Aspect is the width/height ratio of img.
func Aspect(img image.Image) float64 {
	b := img.Bounds()
	if b.Dy() == 0 {
		return 1
	}
	return float64(b.Dx()) / float64(b.Dy())
}
