package effect

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"sync"

	"github.com/guidoenr/backdrop/internal/damp"
	"github.com/guidoenr/backdrop/internal/gpu"
	"github.com/guidoenr/backdrop/internal/params"
	"github.com/guidoenr/backdrop/internal/sdf"
	"github.com/guidoenr/backdrop/internal/theme"
	"github.com/guidoenr/backdrop/internal/viewport"
)

type shapeUniforms struct {
	sdf.Uniforms
	ink color.NRGBA
}

// shapeBlur draws an SDF outline whose stroke widens around the cursor.
type shapeBlur struct {
	cfg   params.Shape
	theme theme.Provider
	log   *log.Logger

	rc      *gpu.Context
	vp      viewport.Viewport
	field   sdf.Field
	prog    *gpu.Program[shapeUniforms]
	tracker *damp.Tracker
	cancel  func()
	draws   drawErrors

	mu    sync.Mutex
	color color.NRGBA
}

func newShapeBlur(d Deps) *shapeBlur {
	return &shapeBlur{cfg: d.Params.Shape, theme: d.theme(), log: d.logger()}
}

func (s *shapeBlur) Name() string { return "shape" }

func (s *shapeBlur) Init(ctx context.Context, rc *gpu.Context, vp viewport.Viewport) error {
	s.rc = rc
	s.vp = vp
	s.tracker = damp.NewTracker(s.cfg.MouseDamping, vp.Width, vp.Height)
	s.setTheme(s.theme.Current())
	if err := ctx.Err(); err != nil {
		return err
	}

	field := &s.field
	var err error
	s.prog, err = gpu.NewProgram(rc, "shape", func(u *shapeUniforms, x, y int) color.NRGBA {
		c := u.ink
		c.A = uint8(field.Alpha(&u.Uniforms, x, y)*255 + 0.5)
		return c
	})
	if err != nil {
		return fmt.Errorf("shape: program: %w", err)
	}
	if err := s.Resize(vp); err != nil {
		s.prog.Release()
		return err
	}
	s.cancel = s.theme.Subscribe(s.setTheme)
	s.log.Printf("shape: ready at %s, variation %d", vp, s.cfg.Variation)
	return nil
}

func (s *shapeBlur) setTheme(t theme.Theme) {
	r, g, b := t.Foreground().RGB255()
	s.mu.Lock()
	s.color = color.NRGBA{R: r, G: g, B: b}
	s.mu.Unlock()
}

func (s *shapeBlur) ink() color.NRGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.color
}

// surface is the render size: host pixels scaled by pixelRatio.
func (s *shapeBlur) surface(vp viewport.Viewport) (int, int) {
	return vp.WithDensity(s.cfg.PixelRatio).Device()
}

func (s *shapeBlur) Resize(vp viewport.Viewport) error {
	w, h := s.surface(vp)
	if err := s.rc.Resize(w, h); err != nil {
		return err
	}
	s.field.Resize(w, h)
	s.tracker.Resize(vp.Width, vp.Height)
	s.vp = vp
	return nil
}

func (s *shapeBlur) Pointer(x, y float64) {
	s.tracker.Set(x, y)
}

func (s *shapeBlur) Render(dt float64) Frame {
	snap := s.tracker.Advance(dt)
	w, h := s.surface(s.vp)
	u := shapeUniforms{
		Uniforms: sdf.Uniforms{
			Shape:      s.cfg.SDF(),
			Mouse:      sdf.Vec{X: float32(snap.Damped.X), Y: float32(snap.Damped.Y)},
			Width:      w,
			Height:     h,
			PixelRatio: float32(s.cfg.PixelRatio),
		},
		ink: s.ink(),
	}
	s.rc.Rows(h, func(y int) { s.field.EvaluateRow(&u.Uniforms, y) })
	fb := s.rc.Framebuffer()
	bg := s.theme.Current().Background()
	if s.draws.failed(s.log, "shape", s.prog.Draw(fb, u)) {
		return Frame{Background: bg}
	}
	return Frame{Image: fb, Background: bg}
}

func (s *shapeBlur) Dispose() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.prog != nil {
		s.prog.Release()
		s.prog = nil
	}
}
