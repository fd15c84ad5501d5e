//go:build sdl

package window

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/guidoenr/backdrop/internal/effect"
	"github.com/guidoenr/backdrop/internal/lifecycle"
	"github.com/guidoenr/backdrop/internal/theme"
	"github.com/guidoenr/backdrop/internal/viewport"
)

// Supported reports whether the SDL backend is compiled in.
func Supported() bool { return true }

type sdlState struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	width    int
	height   int
}

// latest holds the most recently composed frame between the manager
// goroutine and the SDL thread.
type latest struct {
	mu     sync.Mutex
	canvas *canvas
	pixels []byte
	width  int
	height int
	dirty  bool
}

// Run opens a window and drives the effect until it is closed or ctx ends.
// SDL calls stay on the calling goroutine's OS thread.
func Run(ctx context.Context, cfg Config) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	cfg = cfg.withDefaults()

	signal := theme.NewSignal(cfg.Theme)
	e, err := effect.New(cfg.Effect, effect.Deps{Params: cfg.Params, Theme: signal, Log: cfg.Log})
	if err != nil {
		return err
	}

	if err := sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
		return err
	}
	defer sdl.QuitSubSystem(sdl.INIT_VIDEO)

	state := &sdlState{}
	defer state.close()
	state.window, err = sdl.CreateWindow(
		"backdrop - "+e.Name(),
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width), int32(cfg.Height),
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE,
	)
	if err != nil {
		return err
	}
	state.renderer, err = sdl.CreateRenderer(state.window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		return err
	}

	frames := &latest{canvas: newCanvas()}
	size := viewport.New(cfg.Width, cfg.Height)
	var sizeMu sync.Mutex
	ticks := make(chan time.Time, 1)
	manager := lifecycle.New(lifecycle.Config{
		Effect: e,
		FPS:    cfg.FPS,
		Ticks:  ticks,
		Present: func(f effect.Frame) error {
			sizeMu.Lock()
			vp := size
			sizeMu.Unlock()
			frames.store(f, vp.Width, vp.Height)
			return nil
		},
		Log: cfg.Log,
	})

	result := make(chan error, 1)
	go func() {
		result <- manager.Run(ctx, size)
	}()

	ticker := time.NewTicker(time.Duration(float64(time.Second) / cfg.FPS))
	defer ticker.Stop()
	for {
		select {
		case err := <-result:
			return err
		case now := <-ticker.C:
			for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
				switch ev := event.(type) {
				case *sdl.QuitEvent:
					manager.Unmount()
				case *sdl.KeyboardEvent:
					if ev.Type != sdl.KEYDOWN {
						continue
					}
					switch ev.Keysym.Sym {
					case sdl.K_ESCAPE, sdl.K_q:
						manager.Unmount()
					case sdl.K_t:
						cfg.Log.Printf("theme -> %s", signal.Toggle())
					}
				case *sdl.MouseMotionEvent:
					manager.TryDispatch(lifecycle.PointerEvent(float64(ev.X), float64(ev.Y)))
				case *sdl.WindowEvent:
					if ev.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
						vp := viewport.New(int(ev.Data1), int(ev.Data2))
						sizeMu.Lock()
						size = vp
						sizeMu.Unlock()
						manager.TryDispatch(lifecycle.ResizeEvent(vp))
					}
				}
			}
			select {
			case ticks <- now:
			default:
			}
			if err := state.present(frames); err != nil {
				manager.Unmount()
				<-result
				return fmt.Errorf("window present: %w", err)
			}
		}
	}
}

func (l *latest) store(f effect.Frame, width, height int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	img := l.canvas.Compose(f, width, height)
	if img == nil {
		return
	}
	l.pixels = append(l.pixels[:0], img.Pix...)
	l.width = img.Bounds().Dx()
	l.height = img.Bounds().Dy()
	l.dirty = true
}

func (s *sdlState) present(l *latest) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.dirty {
		return nil
	}
	l.dirty = false
	if s.texture == nil || s.width != l.width || s.height != l.height {
		if s.texture != nil {
			s.texture.Destroy()
			s.texture = nil
		}
		tex, err := s.renderer.CreateTexture(
			sdl.PIXELFORMAT_ABGR8888,
			sdl.TEXTUREACCESS_STREAMING,
			int32(l.width), int32(l.height),
		)
		if err != nil {
			return err
		}
		s.texture = tex
		s.width = l.width
		s.height = l.height
	}
	if err := s.texture.Update(nil, l.pixels, l.width*4); err != nil {
		return err
	}
	if err := s.renderer.Clear(); err != nil {
		return err
	}
	if err := s.renderer.Copy(s.texture, nil, nil); err != nil {
		return err
	}
	s.renderer.Present()
	return nil
}

func (s *sdlState) close() {
	if s.texture != nil {
		s.texture.Destroy()
		s.texture = nil
	}
	if s.renderer != nil {
		s.renderer.Destroy()
		s.renderer = nil
	}
	if s.window != nil {
		s.window.Destroy()
		s.window = nil
	}
}
