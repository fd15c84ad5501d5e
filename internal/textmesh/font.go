package textmesh

import (
	"context"
	"fmt"
	"os"
	"sort"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FallbackCharAspect is the width/height ratio assumed when no font metrics
// are available.
const FallbackCharAspect = 0.6

var families = map[string][]byte{
	"mono":      gomono.TTF,
	"mono-bold": gomonobold.TTF,
	"sans":      goregular.TTF,
	"sans-bold": gobold.TTF,
}

// FamilyNames lists the embedded font families.
func FamilyNames() []string {
	out := make([]string, 0, len(families))
	for name := range families {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// LoadFace resolves family as an embedded family name or a TTF/OTF path and
// returns a face at size pixels. ctx is checked after every blocking step.
func LoadFace(ctx context.Context, family string, size float64) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("textmesh: invalid font size %.1f", size)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok := families[family]
	if !ok {
		var err error
		data, err = os.ReadFile(family)
		if err != nil {
			return nil, fmt.Errorf("textmesh: read font %q: %w", family, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("textmesh: parse font %q: %w", family, err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("textmesh: face %q: %w", family, err)
	}
	if err := ctx.Err(); err != nil {
		face.Close()
		return nil, err
	}
	return face, nil
}

// Font is a loaded face plus whether it is the bitmap fallback.
type Font struct {
	Face     font.Face
	Size     float64
	Fallback bool
}

// Load returns the requested face, or the 7x13 bitmap face when loading fails
// for any reason other than cancellation.
func Load(ctx context.Context, family string, size float64) (Font, error) {
	face, err := LoadFace(ctx, family, size)
	if err == nil {
		return Font{Face: face, Size: size}, nil
	}
	if ctx.Err() != nil {
		return Font{}, ctx.Err()
	}
	return Font{Face: basicfont.Face7x13, Size: 13, Fallback: true}, err
}

// CharAspect is the advance of 'A' divided by the font size.
func (f Font) CharAspect() float64 {
	if f.Fallback || f.Face == nil || f.Size <= 0 {
		return FallbackCharAspect
	}
	return CharAspect(f.Face, f.Size)
}

// Close releases the face.
func (f Font) Close() {
	if f.Face != nil && !f.Fallback {
		f.Face.Close()
	}
}

// CharAspect measures the advance of 'A' relative to size.
func CharAspect(face font.Face, size float64) float64 {
	adv, ok := face.GlyphAdvance('A')
	if !ok || adv <= 0 || size <= 0 {
		return FallbackCharAspect
	}
	return float64(adv) / 64 / size
}
