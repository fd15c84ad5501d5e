package app

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/guidoenr/backdrop/internal/effect"
)

// frameTimer appends one CSV row per pipeline stage of every frame:
// frame number, effect name, stage and milliseconds spent in it.
type frameTimer struct {
	mu     sync.Mutex
	out    *os.File
	effect string
	frame  int
	began  time.Time
	lapped time.Time
}

func newFrameTimer(path, effectName string, logger *log.Logger) *frameTimer {
	if path == "" {
		return nil
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		if logger != nil {
			logger.Printf("frame timing off: %v", err)
		}
		return nil
	}
	fmt.Fprintln(out, "frame,effect,stage,ms")
	return &frameTimer{out: out, effect: effectName}
}

// begin starts a new frame.
func (ft *frameTimer) begin() {
	if ft == nil {
		return
	}
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.frame++
	ft.began = time.Now()
	ft.lapped = ft.began
}

// lap records the time since the previous lap under stage.
func (ft *frameTimer) lap(stage string) {
	if ft == nil {
		return
	}
	ft.mu.Lock()
	defer ft.mu.Unlock()
	now := time.Now()
	ft.write(stage, now.Sub(ft.lapped))
	ft.lapped = now
}

// finish records the whole frame as the "total" stage.
func (ft *frameTimer) finish() {
	if ft == nil {
		return
	}
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.write("total", time.Since(ft.began))
}

func (ft *frameTimer) write(stage string, d time.Duration) {
	if ft.out == nil {
		return
	}
	fmt.Fprintf(ft.out, "%d,%s,%s,%.3f\n", ft.frame, ft.effect, stage, float64(d.Microseconds())/1000)
}

func (ft *frameTimer) Close() error {
	if ft == nil {
		return nil
	}
	ft.mu.Lock()
	defer ft.mu.Unlock()
	if ft.out == nil {
		return nil
	}
	err := ft.out.Close()
	ft.out = nil
	return err
}

// timedEffect opens a frame around Render. presentFrame closes it.
type timedEffect struct {
	effect.Effect
	timer *frameTimer
}

func (e timedEffect) Render(dt float64) effect.Frame {
	e.timer.begin()
	f := e.Effect.Render(dt)
	e.timer.lap("render")
	return f
}

func (e timedEffect) SetText(text string) {
	if ts, ok := e.Effect.(effect.TextSetter); ok {
		ts.SetText(text)
	}
}
