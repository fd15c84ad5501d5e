package ascii

import (
	"fmt"
	"sort"

	"github.com/mattn/go-runewidth"
)

// DefaultCharset is ordered dark to light.
const DefaultCharset = " .'`^\",:;Il!i~+_-?][}{1)(|/tfjrxnuvczXYUJCLQ0OZmwqpdbkhao*#MW&8%B@$"

var charsets = map[string]string{
	"default": DefaultCharset,
	"box":     " ░▒▓█",
	"lines":   " `.-=+*/\\|╱╲╳",
	"spark":   " ´`^\"~:;*+×•¤°oO@#█",
}

// Charset resolves a named charset. Unknown names are used as literal glyphs.
func Charset(name string) string {
	if name == "" {
		return DefaultCharset
	}
	if cs, ok := charsets[name]; ok {
		return cs
	}
	return name
}

// CharsetNames returns the built-in charset identifiers.
func CharsetNames() []string {
	out := make([]string, 0, len(charsets))
	for name := range charsets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Ramp maps luminance to glyphs.
type Ramp struct {
	glyphs []rune
	invert bool
}

// NewRamp validates that every glyph occupies a single terminal cell.
func NewRamp(charset string, invert bool) (Ramp, error) {
	glyphs := []rune(charset)
	if len(glyphs) < 2 {
		return Ramp{}, fmt.Errorf("ascii: ramp needs at least 2 glyphs (got %d)", len(glyphs))
	}
	for _, g := range glyphs {
		if w := runewidth.RuneWidth(g); w != 1 {
			return Ramp{}, fmt.Errorf("ascii: glyph %q has width %d", g, w)
		}
	}
	return Ramp{glyphs: glyphs, invert: invert}, nil
}

// Len returns the number of glyphs.
func (r Ramp) Len() int {
	return len(r.glyphs)
}

// Inverted reports whether the index is reflected.
func (r Ramp) Inverted() bool {
	return r.invert
}

// Luminance is 0.3R + 0.6G + 0.1B scaled to [0, 1].
func Luminance(r, g, b uint8) float64 {
	return (0.3*float64(r) + 0.6*float64(g) + 0.1*float64(b)) / 255
}

// Index returns the ramp position for luminance l.
func (r Ramp) Index(l float64) int {
	n := len(r.glyphs)
	if l < 0 {
		l = 0
	} else if l > 1 {
		l = 1
	}
	idx := int((1 - l) * float64(n-1))
	if idx > n-1 {
		idx = n - 1
	}
	if r.invert {
		idx = n - 1 - idx
	}
	return idx
}

// Glyph returns the glyph for one RGBA pixel. Transparent pixels are blank.
func (r Ramp) Glyph(cr, cg, cb, ca uint8) rune {
	if ca == 0 {
		return ' '
	}
	return r.glyphs[r.Index(Luminance(cr, cg, cb))]
}
