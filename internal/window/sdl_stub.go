//go:build !sdl

package window

import "context"

// Supported reports whether the SDL backend is compiled in.
func Supported() bool { return false }

// Run reports ErrUnavailable without the sdl build tag.
func Run(ctx context.Context, cfg Config) error {
	return ErrUnavailable
}
