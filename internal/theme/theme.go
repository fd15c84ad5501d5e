package theme

import (
	"fmt"
	"strings"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Theme is the page colour scheme.
type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"
)

// Parse accepts "dark" or "light" in any case.
func Parse(s string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dark", "":
		return Dark, nil
	case "light":
		return Light, nil
	default:
		return "", fmt.Errorf("theme: unknown theme %q", s)
	}
}

// Background is the page colour behind the effects.
func (t Theme) Background() colorful.Color {
	if t == Light {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	return colorful.Color{}
}

// Foreground contrasts with Background.
func (t Theme) Foreground() colorful.Color {
	if t == Light {
		return colorful.Color{}
	}
	return colorful.Color{R: 1, G: 1, B: 1}
}

// Provider exposes the current theme and change notifications.
type Provider interface {
	Current() Theme
	// Subscribe registers fn for changes and returns a cancel function.
	Subscribe(fn func(Theme)) (cancel func())
}

// Signal is a Provider whose value is set by the host.
type Signal struct {
	mu     sync.Mutex
	value  Theme
	nextID int
	subs   map[int]func(Theme)
}

// NewSignal returns a signal holding initial.
func NewSignal(initial Theme) *Signal {
	return &Signal{value: initial, subs: make(map[int]func(Theme))}
}

// Current returns the theme.
func (s *Signal) Current() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set changes the theme and notifies subscribers when it differs.
func (s *Signal) Set(t Theme) {
	s.mu.Lock()
	if t == s.value {
		s.mu.Unlock()
		return
	}
	s.value = t
	subs := make([]func(Theme), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(t)
	}
}

// Toggle flips between dark and light.
func (s *Signal) Toggle() Theme {
	next := Light
	if s.Current() == Light {
		next = Dark
	}
	s.Set(next)
	return next
}

// Subscribe registers fn.
func (s *Signal) Subscribe(fn func(Theme)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (s *Signal) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
