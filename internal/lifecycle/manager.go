package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/guidoenr/backdrop/internal/effect"
	"github.com/guidoenr/backdrop/internal/gpu"
	"github.com/guidoenr/backdrop/internal/viewport"
)

// ErrContextUnavailable is returned when the render context cannot be created.
var ErrContextUnavailable = errors.New("lifecycle: render context unavailable")

// maxStep caps the frame delta so a stall or pause does not jump animations.
const maxStep = 0.25

// Config wires one effect instance to its host.
type Config struct {
	Effect  effect.Effect
	Factory gpu.Factory
	// Present receives every non-empty frame. An error ends the instance.
	Present func(effect.Frame) error
	FPS     float64
	// Ticks replaces the internal frame clock when set.
	Ticks <-chan time.Time
	// OnState observes transitions. It runs on the manager goroutine.
	OnState func(State)
	Log     *log.Logger
}

// Manager drives one effect instance through its lifecycle. All effect and
// render context calls happen on the goroutine running Run.
type Manager struct {
	cfg    Config
	log    *log.Logger
	events chan Event
	done   chan struct{}
	state  atomic.Int32
	once   sync.Once

	rc *gpu.Context
	vp viewport.Viewport
}

// New creates a manager. Run must be called to start it.
func New(cfg Config) *Manager {
	if cfg.Factory == nil {
		cfg.Factory = gpu.New
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 30
	}
	logger := cfg.Log
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Manager{
		cfg:    cfg,
		log:    logger,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Viewport returns the last applied viewport. Only meaningful from OnState or
// after Run returns.
func (m *Manager) Viewport() viewport.Viewport {
	return m.vp
}

// Done is closed when Run has returned.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Dispatch delivers ev, blocking while the queue is full. Events sent after
// Run returned are dropped.
func (m *Manager) Dispatch(ev Event) {
	select {
	case m.events <- ev:
	case <-m.done:
	}
}

// TryDispatch delivers ev without blocking and reports whether it was queued.
// Pointer hosts use it so fast event sources never stall.
func (m *Manager) TryDispatch(ev Event) bool {
	select {
	case m.events <- ev:
		return true
	default:
		return false
	}
}

// Unmount requests teardown from any state.
func (m *Manager) Unmount() {
	m.Dispatch(Event{Kind: Unmount})
}

func (m *Manager) setState(s State) {
	prev := State(m.state.Swap(int32(s)))
	if prev == s {
		return
	}
	m.log.Printf("%s: %s -> %s", m.cfg.Effect.Name(), prev, s)
	if m.cfg.OnState != nil {
		m.cfg.OnState(s)
	}
}

// pending collects events that arrive before the effect can consume them.
type pending struct {
	vp      *viewport.Viewport
	pointer *[2]float64
	text    *string
}

func (p *pending) record(ev Event) {
	switch ev.Kind {
	case Visible, Resize:
		vp := ev.Viewport
		p.vp = &vp
	case Pointer:
		p.pointer = &[2]float64{ev.X, ev.Y}
	case Text:
		t := ev.Text
		p.text = &t
	}
}

// Run mounts the effect with the host's initial viewport and blocks until the
// instance is unmounted, ctx is cancelled or a fatal error occurs.
func (m *Manager) Run(ctx context.Context, vp viewport.Viewport) error {
	defer m.once.Do(func() { close(m.done) })
	defer m.setState(Unmounted)

	var queued pending
	if !vp.Valid() {
		m.setState(AwaitingVisibility)
		var ok bool
		vp, ok = m.awaitVisibility(ctx, &queued)
		if !ok {
			return nil
		}
	}
	m.vp = vp

	m.setState(Initializing)
	w, h := vp.Device()
	rc, err := m.cfg.Factory(w, h)
	if err != nil {
		m.log.Printf("%s: context creation failed: %v", m.cfg.Effect.Name(), err)
		return fmt.Errorf("%w: %v", ErrContextUnavailable, err)
	}
	m.rc = rc
	defer m.teardown()

	if ok, err := m.initialize(ctx, &queued); !ok || err != nil {
		return err
	}

	m.setState(Running)
	return m.loop(ctx, &queued)
}

func (m *Manager) awaitVisibility(ctx context.Context, queued *pending) (viewport.Viewport, bool) {
	for {
		select {
		case <-ctx.Done():
			return viewport.Viewport{}, false
		case ev := <-m.events:
			switch ev.Kind {
			case Unmount:
				return viewport.Viewport{}, false
			case Visible, Resize:
				if ev.Viewport.Valid() {
					return ev.Viewport, true
				}
			default:
				queued.record(ev)
			}
		}
	}
}

// initialize runs Init on its own goroutine while events keep flowing. An
// unmount cancels the init context and waits for Init to return so the
// context is never released underneath it.
func (m *Manager) initialize(ctx context.Context, queued *pending) (bool, error) {
	initCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	result := make(chan error, 1)
	go func() {
		result <- m.cfg.Effect.Init(initCtx, m.rc, m.vp)
	}()

	for {
		select {
		case err := <-result:
			if err != nil {
				if initCtx.Err() != nil {
					return false, nil
				}
				return false, fmt.Errorf("%s: init: %w", m.cfg.Effect.Name(), err)
			}
			return true, nil
		case <-ctx.Done():
			cancel()
			<-result
			return false, nil
		case ev := <-m.events:
			if ev.Kind == Unmount {
				cancel()
				<-result
				return false, nil
			}
			queued.record(ev)
		}
	}
}

func (m *Manager) loop(ctx context.Context, queued *pending) error {
	e := m.cfg.Effect
	if queued.pointer != nil {
		e.Pointer(queued.pointer[0], queued.pointer[1])
	}
	if queued.text != nil {
		m.setText(*queued.text)
	}
	resize := queued.vp

	ticks := m.cfg.Ticks
	if ticks == nil {
		ticker := time.NewTicker(time.Duration(float64(time.Second) / m.cfg.FPS))
		defer ticker.Stop()
		ticks = ticker.C
	}

	// handle applies one event and reports whether the instance should stop.
	handle := func(ev Event) bool {
		switch ev.Kind {
		case Unmount:
			return true
		case Visible, Resize:
			vp := ev.Viewport
			resize = &vp
		case Pointer:
			e.Pointer(ev.X, ev.Y)
		case Text:
			m.setText(ev.Text)
		}
		return false
	}

	paused := false
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-m.events:
			if handle(ev) {
				return nil
			}
		case now := <-ticks:
			// events queued before this tick win over it
			for drained := false; !drained; {
				select {
				case ev := <-m.events:
					if handle(ev) {
						return nil
					}
				default:
					drained = true
				}
			}
			if resize != nil {
				vp := *resize
				resize = nil
				if !vp.Valid() {
					paused = true
				} else {
					paused = false
					if vp != m.vp {
						if err := e.Resize(vp); err != nil {
							return fmt.Errorf("%s: resize to %s: %w", e.Name(), vp, err)
						}
						m.vp = vp
					}
				}
			}
			dt := 0.0
			if !last.IsZero() {
				dt = now.Sub(last).Seconds()
			}
			last = now
			if dt < 0 {
				dt = 0
			} else if dt > maxStep {
				dt = maxStep
			}
			if paused {
				continue
			}
			frame := e.Render(dt)
			if frame.Empty() || m.cfg.Present == nil {
				continue
			}
			if err := m.cfg.Present(frame); err != nil {
				return fmt.Errorf("%s: present: %w", e.Name(), err)
			}
		}
	}
}

func (m *Manager) setText(text string) {
	if ts, ok := m.cfg.Effect.(effect.TextSetter); ok {
		ts.SetText(text)
	}
}

func (m *Manager) teardown() {
	m.setState(Disposing)
	m.cfg.Effect.Dispose()
	m.rc.Release()
}
