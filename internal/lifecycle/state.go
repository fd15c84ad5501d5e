package lifecycle

import (
	"github.com/guidoenr/backdrop/internal/viewport"
)

// State is a lifecycle phase of one effect instance.
type State int32

const (
	Unmounted State = iota
	AwaitingVisibility
	Initializing
	Running
	Disposing
)

var stateNames = [...]string{
	Unmounted:          "unmounted",
	AwaitingVisibility: "awaiting-visibility",
	Initializing:       "initializing",
	Running:            "running",
	Disposing:          "disposing",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Kind identifies an Event.
type Kind int

const (
	// Visible reports that the host element became visible at Viewport.
	Visible Kind = iota
	// Resize reports a new host size. A zero size pauses rendering.
	Resize
	// Pointer carries a pointer position in host pixels.
	Pointer
	// Text replaces the text of effects that display one.
	Text
	// Unmount tears the instance down.
	Unmount
)

// Event is a host notification.
type Event struct {
	Kind     Kind
	Viewport viewport.Viewport
	X, Y     float64
	Text     string
}

// VisibleEvent builds a Visible event.
func VisibleEvent(vp viewport.Viewport) Event {
	return Event{Kind: Visible, Viewport: vp}
}

// ResizeEvent builds a Resize event.
func ResizeEvent(vp viewport.Viewport) Event {
	return Event{Kind: Resize, Viewport: vp}
}

// PointerEvent builds a Pointer event.
func PointerEvent(x, y float64) Event {
	return Event{Kind: Pointer, X: x, Y: y}
}

// TextEvent builds a Text event.
func TextEvent(text string) Event {
	return Event{Kind: Text, Text: text}
}
