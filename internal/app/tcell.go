package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/guidoenr/backdrop/internal/lifecycle"
)

// runTcell hosts the effect on a tcell screen with mouse tracking.
func (a *App) runTcell(ctx context.Context) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("tcell screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("tcell init: %w", err)
	}
	defer screen.Fini()
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorReset))
	screen.HideCursor()
	screen.EnableMouse()
	screen.Clear()

	a.present = func(cells []Cell, cols, rows int) error {
		drawCells(screen, cells, cols, rows, a.composer.mode)
		screen.Show()
		return nil
	}

	inputCtx, cancelInput := context.WithCancel(ctx)
	defer cancelInput()
	events := make(chan inputEvent, 16)
	a.inputEvents = events
	go a.pollTcell(inputCtx, screen, events)

	w, h := screen.Size()
	a.resize(w, h)
	return a.loop(ctx)
}

// pollTcell translates screen events. Resizes and mouse motion go straight to
// the manager; key actions go through events.
func (a *App) pollTcell(ctx context.Context, screen tcell.Screen, events chan<- inputEvent) {
	defer close(events)
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
		switch tev := ev.(type) {
		case *tcell.EventResize:
			w, h := tev.Size()
			screen.Clear()
			a.resize(w, h)
		case *tcell.EventMouse:
			col, row := tev.Position()
			x, y := a.pointerFor(col, row)
			a.movePointer(col, row, x, y)
		case *tcell.EventKey:
			evt, ok := tcellKeyEvent(tev)
			if !ok {
				continue
			}
			select {
			case events <- evt:
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			if evt.kind == inputQuit {
				return
			}
		}
	}
}

func (a *App) movePointer(col, row int, x, y float64) {
	a.mu.Lock()
	a.cursorX, a.cursorY = col, row
	a.mu.Unlock()
	a.manager.TryDispatch(lifecycle.PointerEvent(x, y))
}

func tcellKeyEvent(ev *tcell.EventKey) (inputEvent, bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return inputEvent{kind: inputQuit}, true
	case tcell.KeyUp:
		return inputEvent{kind: inputMove, dy: -1}, true
	case tcell.KeyDown:
		return inputEvent{kind: inputMove, dy: 1}, true
	case tcell.KeyLeft:
		return inputEvent{kind: inputMove, dx: -2}, true
	case tcell.KeyRight:
		return inputEvent{kind: inputMove, dx: 2}, true
	case tcell.KeyRune:
		return runeEvent(ev.Rune())
	}
	return inputEvent{}, false
}

func drawCells(screen tcell.Screen, cells []Cell, cols, rows int, mode colorMode) {
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			i := row*cols + col
			if i >= len(cells) {
				return
			}
			c := cells[i]
			style := tcell.StyleDefault
			if mode != colorNone {
				style = style.Foreground(tcellColor(c.FG, mode)).Background(tcellColor(c.BG, mode))
			}
			screen.SetContent(col, row, c.Rune, nil, style)
		}
	}
}

func tcellColor(c colorful.Color, mode colorMode) tcell.Color {
	if mode == color256 {
		return tcell.PaletteColor(rgbToANSI(c.R, c.G, c.B))
	}
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
