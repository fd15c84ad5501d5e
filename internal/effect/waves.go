package effect

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/guidoenr/backdrop/internal/damp"
	"github.com/guidoenr/backdrop/internal/dither"
	"github.com/guidoenr/backdrop/internal/gpu"
	"github.com/guidoenr/backdrop/internal/noise"
	"github.com/guidoenr/backdrop/internal/params"
	"github.com/guidoenr/backdrop/internal/theme"
	"github.com/guidoenr/backdrop/internal/viewport"
)

type waveUniforms struct {
	time   float64
	cursor noise.Cursor
	width  int
	height int
}

type ditherUniforms struct {
	src *image.NRGBA
}

// waves renders the noise field into an offscreen target and dithers it into
// the framebuffer.
type waves struct {
	cfg   params.Waves
	theme theme.Provider
	log   *log.Logger

	field   noise.Field
	quant   dither.Params
	rc      *gpu.Context
	vp      viewport.Viewport
	scene   *gpu.Target
	wave    *gpu.Program[waveUniforms]
	post    *gpu.Program[ditherUniforms]
	tracker *damp.Tracker
	time    float64
	draws   drawErrors
}

func newWaves(d Deps) *waves {
	return &waves{cfg: d.Params.Waves, theme: d.theme(), log: d.logger()}
}

func (w *waves) Name() string { return "dither" }

func (w *waves) Init(ctx context.Context, rc *gpu.Context, vp viewport.Viewport) error {
	w.rc = rc
	w.vp = vp
	w.field = w.cfg.Field()
	w.quant = w.cfg.Dither()
	w.tracker = damp.NewTracker(w.cfg.MouseDamping, vp.Width, vp.Height)

	dw, dh := vp.Device()
	var err error
	if w.scene, err = rc.NewTarget(dw, dh); err != nil {
		return fmt.Errorf("dither: scene target: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	field := &w.field
	w.wave, err = gpu.NewProgram(rc, "waves", func(u *waveUniforms, x, y int) color.NRGBA {
		px, py := noise.UV(float64(x), float64(y), u.width, u.height)
		c := field.Shade(field.Intensity(px, py, u.time, u.cursor))
		return color.NRGBA{R: toByte(c[0]), G: toByte(c[1]), B: toByte(c[2]), A: 255}
	})
	if err != nil {
		return fmt.Errorf("dither: wave program: %w", err)
	}
	quant := w.quant
	w.post, err = gpu.NewProgram(rc, "dither", func(u *ditherUniforms, x, y int) color.NRGBA {
		return dither.Pixel(u.src, x, y, quant)
	})
	if err != nil {
		return fmt.Errorf("dither: post program: %w", err)
	}
	w.log.Printf("dither: ready at %s (%dx%d device px, %d levels)", vp, dw, dh, w.quant.ColorLevels)
	return nil
}

func (w *waves) Resize(vp viewport.Viewport) error {
	dw, dh := vp.Device()
	if err := w.rc.Resize(dw, dh); err != nil {
		return err
	}
	if err := w.scene.Resize(dw, dh); err != nil {
		return err
	}
	w.vp = vp
	w.tracker.Resize(vp.Width, vp.Height)
	return nil
}

func (w *waves) Pointer(x, y float64) {
	w.tracker.Set(x, y)
}

func (w *waves) Render(dt float64) Frame {
	if !w.cfg.DisableAnimation {
		w.time += dt
	}
	snap := w.tracker.Advance(dt)
	dw, dh := w.vp.Device()
	d := w.vp.Density()
	cx, cy := noise.PointerUV(snap.Damped.X*d, snap.Damped.Y*d, dw, dh)

	bg := w.theme.Current().Background()
	scene := w.scene.Image()
	err := w.wave.Draw(scene, waveUniforms{
		time: w.time,
		cursor: noise.Cursor{
			X:       cx,
			Y:       cy,
			Radius:  w.cfg.MouseRadius,
			Enabled: w.cfg.EnableMouseInteraction,
		},
		width:  dw,
		height: dh,
	})
	fb := w.rc.Framebuffer()
	if err == nil {
		err = w.post.Draw(fb, ditherUniforms{src: scene})
	}
	if w.draws.failed(w.log, "dither", err) {
		return Frame{Background: bg}
	}
	return Frame{Image: fb, Background: bg}
}

func (w *waves) Dispose() {
	if w.post != nil {
		w.post.Release()
	}
	if w.wave != nil {
		w.wave.Release()
	}
	if w.scene != nil {
		w.scene.Release()
	}
}
