package effect

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"

	"github.com/guidoenr/backdrop/internal/gpu"
	"github.com/guidoenr/backdrop/internal/params"
	"github.com/guidoenr/backdrop/internal/theme"
	"github.com/guidoenr/backdrop/internal/viewport"
)

func start(t *testing.T, name string, cfg params.Config, sig theme.Provider, vp viewport.Viewport) (Effect, *gpu.Context) {
	t.Helper()
	e, err := New(name, Deps{Params: cfg, Theme: sig})
	if err != nil {
		t.Fatalf("new %s: %v", name, err)
	}
	w, h := vp.Device()
	rc, err := gpu.New(w, h)
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	if err := e.Init(context.Background(), rc, vp); err != nil {
		t.Fatalf("init %s: %v", name, err)
	}
	return e, rc
}

func stop(t *testing.T, e Effect, rc *gpu.Context) {
	t.Helper()
	e.Dispose()
	if n := rc.Live(); n != 0 {
		t.Fatalf("%s leaked %d resources", e.Name(), n)
	}
	rc.Release()
}

func TestNewResolvesAliases(t *testing.T) {
	for _, name := range []string{"dither", "waves", "ASCII", "asciitext", "shape", "shapeblur"} {
		if _, err := New(name, Deps{Params: params.Defaults()}); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	if _, err := New("plasma", Deps{Params: params.Defaults()}); err == nil {
		t.Fatalf("expected error for unknown effect")
	}
	bad := params.Defaults()
	bad.Waves.ColorNum = 1
	if _, err := New("dither", Deps{Params: bad}); err == nil {
		t.Fatalf("expected validation error")
	}
	if got := Names(); len(got) != 3 || got[0] != "ascii" {
		t.Fatalf("names=%v", got)
	}
}

func TestWavesProducesQuantizedFrames(t *testing.T) {
	e, rc := start(t, "dither", params.Defaults(), theme.NewSignal(theme.Dark), viewport.New(32, 24))
	e.Pointer(16, 12)
	var f Frame
	for i := 0; i < 3; i++ {
		f = e.Render(1.0 / 60)
	}
	if f.Image == nil || f.Image.Bounds().Dx() != 32 {
		t.Fatalf("frame image missing or wrong size")
	}
	for i := 0; i < len(f.Image.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			switch f.Image.Pix[i+c] {
			case 0, 85, 170, 255:
			default:
				t.Fatalf("channel value %d not on a 4-level grid", f.Image.Pix[i+c])
			}
		}
		if f.Image.Pix[i+3] != 255 {
			t.Fatalf("waves should be opaque")
		}
	}

	if err := e.Resize(viewport.New(20, 10).WithDensity(2)); err != nil {
		t.Fatalf("resize: %v", err)
	}
	f = e.Render(1.0 / 60)
	if b := f.Image.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Fatalf("resized frame %v", b)
	}
	stop(t, e, rc)
}

func TestWavesFrozenWithoutAnimation(t *testing.T) {
	cfg := params.Defaults()
	cfg.Waves.DisableAnimation = true
	cfg.Waves.EnableMouseInteraction = false
	e, rc := start(t, "dither", cfg, nil, viewport.New(16, 16))
	first := append([]byte(nil), e.Render(0.5).Image.Pix...)
	second := e.Render(0.5).Image.Pix
	if string(first) != string(second) {
		t.Fatalf("frames differ with animation disabled")
	}
	stop(t, e, rc)
}

func TestEffectsDefaultToDarkTheme(t *testing.T) {
	var nilSignal *theme.Signal
	for _, deps := range []Deps{
		{Params: params.Defaults()},
		{Params: params.Defaults(), Theme: nilSignal},
	} {
		for _, name := range []string{"dither", "shape"} {
			e, err := New(name, deps)
			if err != nil {
				t.Fatalf("new %s: %v", name, err)
			}
			vp := viewport.New(12, 8)
			w, h := vp.Device()
			rc, err := gpu.New(w, h)
			if err != nil {
				t.Fatalf("context: %v", err)
			}
			if err := e.Init(context.Background(), rc, vp); err != nil {
				t.Fatalf("init %s: %v", name, err)
			}
			f := e.Render(1.0 / 60)
			if f.Image == nil || f.Background != theme.Dark.Background() {
				t.Fatalf("%s: expected a dark frame, got background %v", name, f.Background)
			}
			stop(t, e, rc)
		}
	}
}

func TestASCIIGridAndText(t *testing.T) {
	e, rc := start(t, "ascii", params.Defaults(), theme.NewSignal(theme.Dark), viewport.New(400, 300))
	a := e.(*asciiText)
	cols, rows := a.Grid()
	if rows != 300/8 || cols <= 0 {
		t.Fatalf("grid %dx%d", cols, rows)
	}
	e.Pointer(300, 50)
	f := e.Render(1.0 / 60)
	if f.Overlay == nil || f.Overlay.Grid.Rows != rows || f.Overlay.Grid.Cols != cols {
		t.Fatalf("overlay grid mismatch: %+v", f.Overlay)
	}
	if strings.TrimSpace(f.Overlay.Grid.Text()) == "" {
		t.Fatalf("text plane produced no glyphs")
	}
	if f.Overlay.Hue == 0 {
		t.Fatalf("hue should start moving toward the pointer angle")
	}

	a.SetText("")
	f = e.Render(1.0 / 60)
	if strings.TrimSpace(f.Overlay.Grid.Text()) != "" {
		t.Fatalf("empty text should give a blank grid")
	}

	if err := e.Resize(viewport.New(3, 3)); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if f := e.Render(1.0 / 60); !f.Empty() {
		t.Fatalf("tiny viewport should pause output")
	}
	if err := e.Resize(viewport.New(800, 300)); err != nil {
		t.Fatalf("resize: %v", err)
	}
	wide, _ := a.Grid()
	if d := wide - 2*cols; d < -1 || d > 1 {
		t.Fatalf("cols %d -> %d after doubling width", cols, wide)
	}
	stop(t, e, rc)
}

func TestASCIIInitHonoursCancellation(t *testing.T) {
	e, err := New("ascii", Deps{Params: params.Defaults()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	rc, _ := gpu.New(10, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Init(ctx, rc, viewport.New(10, 10)); err == nil {
		t.Fatalf("init should stop on a cancelled context")
	}
	stop(t, e, rc)
}

func TestShapeFollowsTheme(t *testing.T) {
	sig := theme.NewSignal(theme.Dark)
	e, rc := start(t, "shape", params.Defaults(), sig, viewport.New(60, 40))
	ink := func(f Frame) (uint8, bool) {
		for i := 0; i < len(f.Image.Pix); i += 4 {
			if f.Image.Pix[i+3] > 0 {
				return f.Image.Pix[i], true
			}
		}
		return 0, false
	}
	f := e.Render(1.0 / 60)
	if b := f.Image.Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Fatalf("frame should be rendered at pixelRatio 2, got %v", b)
	}
	r, ok := ink(f)
	if !ok || r != 255 {
		t.Fatalf("dark theme ink=%d ok=%v", r, ok)
	}
	sig.Set(theme.Light)
	r, ok = ink(e.Render(1.0 / 60))
	if !ok || r != 0 {
		t.Fatalf("light theme ink=%d ok=%v", r, ok)
	}
	stop(t, e, rc)
	if sig.Subscribers() != 0 {
		t.Fatalf("theme subscription not released")
	}
}

func TestRenderAfterContextLossLogsOnce(t *testing.T) {
	for _, name := range []string{"dither", "shape"} {
		var buf bytes.Buffer
		e, err := New(name, Deps{Params: params.Defaults(), Log: log.New(&buf, "", 0)})
		if err != nil {
			t.Fatalf("new %s: %v", name, err)
		}
		vp := viewport.New(10, 10)
		w, h := vp.Device()
		rc, err := gpu.New(w, h)
		if err != nil {
			t.Fatalf("context: %v", err)
		}
		if err := e.Init(context.Background(), rc, vp); err != nil {
			t.Fatalf("init %s: %v", name, err)
		}
		rc.Release()
		for i := 0; i < 3; i++ {
			if f := e.Render(1.0 / 60); f.Image != nil {
				t.Fatalf("%s: frame from a released context should be empty", name)
			}
		}
		if n := strings.Count(buf.String(), "draw:"); n != 1 {
			t.Fatalf("%s: expected one draw error logged, got %d in %q", name, n, buf.String())
		}
	}
}
