package effect

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"math"
	"sync"

	"github.com/guidoenr/backdrop/internal/ascii"
	"github.com/guidoenr/backdrop/internal/damp"
	"github.com/guidoenr/backdrop/internal/gpu"
	"github.com/guidoenr/backdrop/internal/params"
	"github.com/guidoenr/backdrop/internal/scene"
	"github.com/guidoenr/backdrop/internal/textmesh"
	"github.com/guidoenr/backdrop/internal/theme"
	"github.com/guidoenr/backdrop/internal/viewport"
)

const (
	planeSegments = 36
	// referenceFPS is the frame rate the per-frame damping fractions were tuned at.
	referenceFPS = 60
)

// asciiText renders a waving text plane at glyph-grid resolution and reads it
// back as an ASCII overlay.
type asciiText struct {
	cfg   params.ASCII
	theme theme.Provider
	log   *log.Logger

	rc        *gpu.Context
	vp        viewport.Viewport
	textFont  textmesh.Font
	glyphFont textmesh.Font
	aspect    float64
	texture   *gpu.Texture
	target    *gpu.Target
	plane     scene.Mesh
	camera    scene.Camera
	conv      ascii.Converter
	gradient  ascii.Gradient
	tracker   *damp.Tracker
	hue       damp.Angle
	rotRate   float64
	rot       scene.Rotation
	cols      int
	rows      int
	time      float64
	readback  []byte

	mu          sync.Mutex
	pendingText *string
}

func newASCIIText(d Deps) *asciiText {
	return &asciiText{cfg: d.Params.ASCII, theme: d.theme(), log: d.logger()}
}

func (a *asciiText) Name() string { return "ascii" }

func (a *asciiText) Init(ctx context.Context, rc *gpu.Context, vp viewport.Viewport) error {
	a.rc = rc
	a.vp = vp

	var err error
	a.textFont, err = textmesh.Load(ctx, a.cfg.TextFont, a.cfg.TextFontSize)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		a.log.Printf("ascii: text font %q unavailable, using fallback: %v", a.cfg.TextFont, err)
	}
	a.glyphFont, err = textmesh.Load(ctx, a.cfg.ASCIIFont, a.cfg.ASCIIFontSize)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		a.log.Printf("ascii: glyph font %q unavailable, using fallback metrics: %v", a.cfg.ASCIIFont, err)
	}
	a.aspect = a.glyphFont.CharAspect()

	ramp, err := ascii.NewRamp(ascii.Charset(a.cfg.Charset), a.cfg.Invert)
	if err != nil {
		return err
	}
	a.conv = ascii.Converter{Ramp: ramp}
	if a.gradient, err = ascii.ParseGradient(a.cfg.Gradient); err != nil {
		return err
	}
	if err := a.buildText(a.cfg.Text); err != nil {
		return err
	}
	a.tracker = damp.NewTracker(0, vp.Width, vp.Height)
	a.hue = damp.Angle{Rate: damp.RateFromFraction(a.cfg.HueDamping, referenceFPS)}
	a.rotRate = damp.RateFromFraction(a.cfg.RotationDamping, referenceFPS)
	if err := a.Resize(vp); err != nil {
		return err
	}
	a.log.Printf("ascii: ready at %s, grid %dx%d, char aspect %.3f", vp, a.cols, a.rows, a.aspect)
	return nil
}

// buildText rasterizes text into the plane texture and sizes the plane to it.
func (a *asciiText) buildText(text string) error {
	img := textmesh.Render(a.textFont.Face, text, textmesh.TextColor(a.cfg.TextColor))
	if a.texture == nil {
		tex, err := a.rc.NewTexture(img)
		if err != nil {
			return fmt.Errorf("ascii: text texture: %w", err)
		}
		a.texture = tex
	} else if err := a.texture.Update(img); err != nil {
		return fmt.Errorf("ascii: text texture: %w", err)
	}
	h := a.cfg.PlaneBaseHeight
	a.plane = scene.Plane(h*textmesh.Aspect(img), h, planeSegments, planeSegments)
	return nil
}

// Grid returns the current glyph grid size.
func (a *asciiText) Grid() (int, int) {
	return a.cols, a.rows
}

func (a *asciiText) Resize(vp viewport.Viewport) error {
	a.vp = vp
	a.tracker.Resize(vp.Width, vp.Height)
	a.tracker.Reset(damp.Point{X: float64(vp.Width) / 2, Y: float64(vp.Height) / 2})
	a.cols, a.rows = ascii.GridSize(vp.Width, vp.Height, a.cfg.ASCIIFontSize, a.aspect)
	if a.cols == 0 {
		return nil
	}
	a.camera = scene.NewCamera(vp.Aspect())
	if a.target == nil {
		t, err := a.rc.NewTarget(a.cols, a.rows)
		if err != nil {
			return fmt.Errorf("ascii: readback target: %w", err)
		}
		a.target = t
		return nil
	}
	return a.target.Resize(a.cols, a.rows)
}

func (a *asciiText) Pointer(x, y float64) {
	a.tracker.Set(x, y)
}

// SetText replaces the displayed text before the next frame.
func (a *asciiText) SetText(text string) {
	a.mu.Lock()
	a.pendingText = &text
	a.mu.Unlock()
}

func (a *asciiText) Render(dt float64) Frame {
	bg := a.theme.Current().Background()
	a.mu.Lock()
	pending := a.pendingText
	a.pendingText = nil
	a.mu.Unlock()
	if pending != nil {
		if err := a.buildText(*pending); err != nil {
			a.log.Printf("ascii: %v", err)
		}
	}
	if a.cols == 0 || a.target == nil {
		return Frame{Background: bg}
	}

	a.time += dt
	snap := a.tracker.Snapshot()
	a.hue.Advance(snap.Angle(), dt)
	w, h := float64(a.vp.Width), float64(a.vp.Height)
	a.rot.X = damp.Toward(a.rot.X, mapRange(snap.Raw.Y, 0, h, 0.5, -0.5), a.rotRate, dt)
	a.rot.Y = damp.Toward(a.rot.Y, mapRange(snap.Raw.X, 0, w, -0.5, 0.5), a.rotRate, dt)

	uTime := math.Sin(a.time)
	shift := 0.01 * (1 + math.Min(1, math.Hypot(snap.DX/(w/2), snap.DY/(h/2))))
	var vs scene.VertexShader
	if a.cfg.EnableWaves {
		vs = waveVertex(uTime * 5)
	}
	a.target.Clear()
	scene.Draw(a.target.Image(), a.camera, &a.plane, a.rot, vs, channelShift(a.texture, uTime, shift))

	var err error
	a.readback, err = a.target.ReadPixels(a.readback)
	if err != nil {
		return Frame{Background: bg}
	}
	grid := a.conv.Convert(a.readback, a.cols, a.rows)
	return Frame{
		Overlay: &ascii.Overlay{
			Grid:     grid,
			Hue:      a.hue.Deg,
			Gradient: a.gradient,
			Blend:    a.cfg.Blend,
			Aspect:   a.vp.Aspect(),
		},
		Background: bg,
	}
}

func (a *asciiText) Dispose() {
	if a.target != nil {
		a.target.Release()
		a.target = nil
	}
	if a.texture != nil {
		a.texture.Release()
		a.texture = nil
	}
	a.textFont.Close()
	a.glyphFont.Close()
}

func waveVertex(t float64) scene.VertexShader {
	return func(p scene.Vec3) scene.Vec3 {
		return scene.Vec3{
			X: p.X + math.Sin(t+p.Y)*0.5,
			Y: p.Y + math.Cos(t+p.Z)*0.15,
			Z: p.Z + math.Sin(t+p.X),
		}
	}
}

// channelShift samples each colour channel at a slightly different offset.
func channelShift(tex *gpu.Texture, t, amount float64) scene.FragmentShader {
	return func(u, v float64) color.NRGBA {
		ro := math.Cos(t*2-t+u) * amount
		g := math.Tan(t*0.5+u-t) * amount
		bo := -math.Cos(t*2+t+v) * amount
		return color.NRGBA{
			R: tex.Sample(u+ro, v+ro).R,
			G: tex.Sample(u+g, v+g).G,
			B: tex.Sample(u+bo, v+bo).B,
			A: tex.Sample(u, v).A,
		}
	}
}

func mapRange(v, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin {
		return outMin
	}
	return (v-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}
