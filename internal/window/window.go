// Package window hosts an effect in a native SDL window. The SDL backend is
// only compiled with the sdl build tag.
package window

import (
	"errors"
	"log"

	"github.com/guidoenr/backdrop/internal/params"
	"github.com/guidoenr/backdrop/internal/theme"
)

// ErrUnavailable is returned by Run when the binary was built without SDL.
var ErrUnavailable = errors.New("window: SDL backend not enabled; rebuild with -tags sdl")

// Config configures the window host.
type Config struct {
	Effect string
	Params params.Config
	Width  int
	Height int
	FPS    float64
	Theme  theme.Theme
	Log    *log.Logger
}

func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = 960
	}
	if c.Height <= 0 {
		c.Height = 540
	}
	if c.FPS <= 0 {
		c.FPS = 60
	}
	if c.Theme == "" {
		c.Theme = theme.Dark
	}
	if c.Log == nil {
		c.Log = log.Default()
	}
	return c
}
