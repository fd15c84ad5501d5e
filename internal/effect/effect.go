package effect

import (
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/guidoenr/backdrop/internal/ascii"
	"github.com/guidoenr/backdrop/internal/gpu"
	"github.com/guidoenr/backdrop/internal/params"
	"github.com/guidoenr/backdrop/internal/theme"
	"github.com/guidoenr/backdrop/internal/viewport"
)

// Frame is what an effect hands to its host after a render.
type Frame struct {
	// Image is a device-pixel colour buffer, nil for overlay-only effects.
	// It is owned by the effect and valid until the next Render.
	Image *image.NRGBA
	// Overlay is the glyph layer, nil for pixel effects.
	Overlay    *ascii.Overlay
	Background colorful.Color
}

// Empty reports whether there is nothing to present.
func (f Frame) Empty() bool {
	return f.Image == nil && (f.Overlay == nil || f.Overlay.Grid.Empty())
}

// Effect is one animated background. Init, Resize, Render and Dispose are
// called from a single goroutine; Pointer may be called from any goroutine.
type Effect interface {
	Name() string
	// Init builds every GPU resource. ctx is cancelled when the instance is
	// unmounted while Init is still running.
	Init(ctx context.Context, rc *gpu.Context, vp viewport.Viewport) error
	Resize(vp viewport.Viewport) error
	// Pointer records the pointer position in host pixels.
	Pointer(x, y float64)
	Render(dt float64) Frame
	// Dispose releases the effect's resources and subscriptions.
	Dispose()
}

// TextSetter is implemented by effects that display text.
type TextSetter interface {
	SetText(text string)
}

// Deps are the collaborators an effect is built with.
type Deps struct {
	Params params.Config
	Theme  theme.Provider
	Log    *log.Logger
}

func (d Deps) logger() *log.Logger {
	if d.Log == nil {
		return log.New(io.Discard, "", 0)
	}
	return d.Log
}

// theme returns the provider, defaulting to dark when none or a nil signal
// was given.
func (d Deps) theme() theme.Provider {
	if sig, ok := d.Theme.(*theme.Signal); d.Theme == nil || (ok && sig == nil) {
		return theme.NewSignal(theme.Dark)
	}
	return d.Theme
}

type constructor func(Deps) Effect

var registry = map[string]constructor{
	"dither": func(d Deps) Effect { return newWaves(d) },
	"ascii":  func(d Deps) Effect { return newASCIIText(d) },
	"shape":  func(d Deps) Effect { return newShapeBlur(d) },
}

var aliases = map[string]string{
	"waves":     "dither",
	"asciitext": "ascii",
	"text":      "ascii",
	"shapeblur": "shape",
	"sdf":       "shape",
}

// New builds an effect by name.
func New(name string, deps Deps) (Effect, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	ctor, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("unknown effect %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	if err := deps.Params.Validate(); err != nil {
		return nil, fmt.Errorf("effect %s: %w", key, err)
	}
	return ctor(deps), nil
}

// Names returns the registered effect names.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// drawErrors logs the first failed draw of an effect and reports failures.
type drawErrors struct {
	logged bool
}

func (d *drawErrors) failed(logger *log.Logger, name string, err error) bool {
	if err == nil {
		return false
	}
	if !d.logged {
		logger.Printf("%s: draw: %v", name, err)
		d.logged = true
	}
	return true
}

func toByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
