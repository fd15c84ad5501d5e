package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"

	"github.com/guidoenr/backdrop/internal/effect"
	"github.com/guidoenr/backdrop/internal/lifecycle"
	"github.com/guidoenr/backdrop/internal/params"
	"github.com/guidoenr/backdrop/internal/textmesh"
	"github.com/guidoenr/backdrop/internal/theme"
	"github.com/guidoenr/backdrop/internal/viewport"
)

// Config configures the terminal host.
type Config struct {
	Effect      string
	Params      params.Config
	Width       int
	Height      int
	TargetFPS   float64
	Backend     string
	Theme       theme.Theme
	UseANSI     bool
	TrueColor   bool
	Autopilot   bool
	ProfilePath string
	Log         *log.Logger
}

type inputKind int

const (
	inputQuit inputKind = iota
	inputTheme
	inputAutopilot
	inputMove
)

type inputEvent struct {
	kind   inputKind
	dx, dy int
}

// cellScale is the size of one terminal cell in effect host pixels.
type cellScale struct {
	x, y float64
}

// App hosts one effect instance in a terminal.
type App struct {
	cfg      Config
	log      *log.Logger
	out      io.Writer
	theme    *theme.Signal
	effect   effect.Effect
	manager  *lifecycle.Manager
	ticks    chan time.Time
	pilot    *autopilot
	timer    *frameTimer
	composer *composer
	scale    cellScale
	last     time.Time
	pollSize bool

	mu          sync.Mutex
	width       int
	height      int
	cursorX     int
	cursorY     int
	inputEvents chan inputEvent
	present     func([]Cell, int, int) error
}

// New constructs the host and its effect.
func New(cfg Config) (*App, error) {
	if cfg.TargetFPS <= 0 {
		cfg.TargetFPS = 30
	}
	if cfg.Log == nil {
		cfg.Log = log.New(os.Stdout, "", log.LstdFlags)
	}
	if cfg.Width <= 0 {
		cfg.Width = 80
	}
	if cfg.Height <= 0 {
		cfg.Height = 24
	}
	if cfg.Theme == "" {
		cfg.Theme = theme.Dark
	}

	signal := theme.NewSignal(cfg.Theme)
	e, err := effect.New(cfg.Effect, effect.Deps{Params: cfg.Params, Theme: signal, Log: cfg.Log})
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		log:      cfg.Log,
		out:      os.Stdout,
		theme:    signal,
		effect:   e,
		ticks:    make(chan time.Time, 1),
		pilot:    newAutopilot(),
		composer: newComposer(cfg.colorMode()),
		scale:    cellScaleFor(e.Name(), cfg.Params),
		width:    cfg.Width,
		height:   cfg.Height,
		cursorX:  cfg.Width / 2,
		cursorY:  cfg.Height / 2,
	}
	a.present = a.writeANSI
	if ft := newFrameTimer(cfg.ProfilePath, e.Name(), cfg.Log); ft != nil {
		a.timer = ft
		e = timedEffect{Effect: e, timer: ft}
	}
	a.manager = lifecycle.New(lifecycle.Config{
		Effect:  e,
		FPS:     cfg.TargetFPS,
		Ticks:   a.ticks,
		Present: a.presentFrame,
		Log:     cfg.Log,
	})
	return a, nil
}

func (c Config) colorMode() colorMode {
	switch {
	case !c.UseANSI:
		return colorNone
	case c.TrueColor:
		return colorTrue
	default:
		return color256
	}
}

// cellScaleFor returns the host pixel size of a terminal cell. Pixel effects
// get two vertical pixels per cell; the ASCII effect gets one glyph per cell.
func cellScaleFor(name string, p params.Config) cellScale {
	if name != "ascii" {
		return cellScale{x: 1, y: 2}
	}
	f, _ := textmesh.Load(context.Background(), p.ASCII.ASCIIFont, p.ASCII.ASCIIFontSize)
	defer f.Close()
	size := p.ASCII.ASCIIFontSize
	return cellScale{x: size * f.CharAspect(), y: size}
}

// viewportFor maps a terminal size to the effect's host viewport.
func (a *App) viewportFor(cols, rows int) viewport.Viewport {
	return viewport.New(
		int(math.Ceil(float64(cols)*a.scale.x)),
		int(math.Ceil(float64(rows)*a.scale.y)),
	)
}

// pointerFor maps a cell to the host pixel at its centre.
func (a *App) pointerFor(col, row int) (float64, float64) {
	return (float64(col) + 0.5) * a.scale.x, (float64(row) + 0.5) * a.scale.y
}

func (a *App) size() (int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.width, a.height
}

// Run starts the render loop until context cancellation or quit.
func (a *App) Run(ctx context.Context) error {
	if strings.EqualFold(a.cfg.Backend, "tcell") {
		return a.runTcell(ctx)
	}

	enterAltScreen()
	clearScreen()
	hideCursor()
	defer func() {
		showCursor()
		exitAltScreen()
	}()

	inputCtx, cancelInput := context.WithCancel(ctx)
	defer cancelInput()
	a.startInputListener(inputCtx)
	a.pollSize = true
	a.ensureDimensions()

	return a.loop(ctx)
}

// loop runs the lifecycle manager and feeds it ticks, input and resizes.
func (a *App) loop(ctx context.Context) error {
	frameDuration := time.Duration(float64(time.Second) / a.cfg.TargetFPS)
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	w, h := a.size()
	result := make(chan error, 1)
	go func() {
		result <- a.manager.Run(ctx, a.viewportFor(w, h))
	}()

	for {
		select {
		case <-ctx.Done():
			<-result
			moveCursorHome()
			return ctx.Err()
		case err := <-result:
			return err
		case evt, ok := <-a.inputEvents:
			if !ok {
				a.inputEvents = nil
				continue
			}
			if a.handleInput(evt) {
				a.manager.Unmount()
				return <-result
			}
		case now := <-ticker.C:
			a.step(now)
		}
	}
}

// handleInput applies one key action and reports whether to quit.
func (a *App) handleInput(evt inputEvent) bool {
	switch evt.kind {
	case inputQuit:
		return true
	case inputTheme:
		a.log.Printf("theme -> %s", a.theme.Toggle())
	case inputAutopilot:
		a.cfg.Autopilot = !a.cfg.Autopilot
		a.log.Printf("autopilot -> %v", a.cfg.Autopilot)
	case inputMove:
		a.mu.Lock()
		a.cursorX = clampInt(a.cursorX+evt.dx, 0, a.width-1)
		a.cursorY = clampInt(a.cursorY+evt.dy, 0, a.height-1)
		x, y := a.pointerFor(a.cursorX, a.cursorY)
		a.mu.Unlock()
		a.manager.TryDispatch(lifecycle.PointerEvent(x, y))
	}
	return false
}

// step runs once per host tick: resize and autopilot events first, then the
// frame tick so pending changes apply before the render.
func (a *App) step(now time.Time) {
	delta := 1.0 / a.cfg.TargetFPS
	if !a.last.IsZero() {
		delta = now.Sub(a.last).Seconds()
	}
	a.last = now

	if a.pollSize {
		a.ensureDimensions()
	}
	if a.cfg.Autopilot {
		w, h := a.size()
		vp := a.viewportFor(w, h)
		x, y := a.pilot.Next(delta, float64(vp.Width), float64(vp.Height))
		a.manager.TryDispatch(lifecycle.PointerEvent(x, y))
	}
	select {
	case a.ticks <- now:
	default:
	}
}

// Close releases held resources.
func (a *App) Close() error {
	return a.timer.Close()
}

func (a *App) presentFrame(f effect.Frame) error {
	w, h := a.size()
	cells := a.composer.Compose(f, w, h)
	a.timer.lap("compose")
	err := a.present(cells, w, h)
	a.timer.lap("write")
	a.timer.finish()
	return err
}

func (a *App) writeANSI(cells []Cell, cols, rows int) error {
	lines := encodeANSI(cells, cols, rows, a.composer.mode)
	var sb strings.Builder
	sb.WriteString("\x1b[H")
	for i, line := range lines {
		sb.WriteString(line)
		if i < len(lines)-1 {
			sb.WriteString("\r\n")
		}
	}
	_, err := io.WriteString(a.out, sb.String())
	return err
}

func (a *App) ensureDimensions() {
	fd := int(os.Stdout.Fd())
	if fd < 0 {
		return
	}
	w, h, err := term.GetSize(fd)
	if err != nil || w <= 0 || h <= 0 {
		return
	}
	a.resize(w, h)
}

// resize records a terminal size and forwards it to the manager.
func (a *App) resize(w, h int) {
	a.mu.Lock()
	if w == a.width && h == a.height {
		a.mu.Unlock()
		return
	}
	a.width = w
	a.height = h
	a.cursorX = clampInt(a.cursorX, 0, w-1)
	a.cursorY = clampInt(a.cursorY, 0, h-1)
	a.mu.Unlock()
	a.manager.Dispatch(lifecycle.ResizeEvent(a.viewportFor(w, h)))
}

func (a *App) startInputListener(ctx context.Context) {
	if err := keyboard.Open(); err != nil {
		a.log.Printf("keyboard input disabled: %v", err)
		a.inputEvents = nil
		return
	}

	events := make(chan inputEvent, 16)
	a.inputEvents = events

	closeOnce := &sync.Once{}
	go func() {
		<-ctx.Done()
		closeOnce.Do(func() {
			_ = keyboard.Close()
		})
	}()

	go func() {
		defer close(events)
		defer closeOnce.Do(func() {
			_ = keyboard.Close()
		})
		for {
			char, key, err := keyboard.GetKey()
			if err != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
			evt, ok := keyEvent(char, key)
			if !ok {
				continue
			}
			if evt.kind == inputQuit {
				events <- evt
				return
			}
			select {
			case events <- evt:
			default:
			}
		}
	}()
}

// keyEvent maps a key press to an input action.
func keyEvent(char rune, key keyboard.Key) (inputEvent, bool) {
	switch {
	case key == keyboard.KeyEsc || key == keyboard.KeyCtrlC:
		return inputEvent{kind: inputQuit}, true
	case key == keyboard.KeyArrowUp:
		return inputEvent{kind: inputMove, dy: -1}, true
	case key == keyboard.KeyArrowDown:
		return inputEvent{kind: inputMove, dy: 1}, true
	case key == keyboard.KeyArrowLeft:
		return inputEvent{kind: inputMove, dx: -2}, true
	case key == keyboard.KeyArrowRight:
		return inputEvent{kind: inputMove, dx: 2}, true
	}
	return runeEvent(char)
}

func runeEvent(char rune) (inputEvent, bool) {
	switch char {
	case 'q', 'Q':
		return inputEvent{kind: inputQuit}, true
	case 't', 'T':
		return inputEvent{kind: inputTheme}, true
	case 'a', 'A':
		return inputEvent{kind: inputAutopilot}, true
	}
	return inputEvent{}, false
}

func clampInt(v, min, max int) int {
	if max < min {
		return min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clearScreen() {
	fmt.Print("\x1b[2J")
	moveCursorHome()
}

func moveCursorHome() {
	fmt.Print("\x1b[H")
}

func hideCursor() {
	fmt.Print("\x1b[?25l")
}

func showCursor() {
	fmt.Print("\x1b[?25h")
}

func enterAltScreen() {
	fmt.Print("\x1b[?1049h")
}

func exitAltScreen() {
	fmt.Print("\x1b[?1049l\x1b[0m")
}
