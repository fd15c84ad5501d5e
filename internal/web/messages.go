package web

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/guidoenr/backdrop/internal/effect"
	"github.com/guidoenr/backdrop/internal/lifecycle"
	"github.com/guidoenr/backdrop/internal/viewport"
)

// clientMessage is everything a page can send over its socket.
type clientMessage struct {
	Type   string  `json:"type"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	DPR    float64 `json:"dpr,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Value  string  `json:"value,omitempty"`
}

func decodeClientMessage(data []byte) (clientMessage, error) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, fmt.Errorf("decode client message: %w", err)
	}
	return msg, nil
}

// event maps a lifecycle message to its manager event. Theme messages are
// handled by the session and report false.
func (m clientMessage) event() (lifecycle.Event, bool) {
	switch m.Type {
	case "visible":
		return lifecycle.VisibleEvent(m.viewport()), true
	case "resize":
		return lifecycle.ResizeEvent(m.viewport()), true
	case "pointer":
		return lifecycle.PointerEvent(m.X, m.Y), true
	case "text":
		return lifecycle.TextEvent(m.Value), true
	}
	return lifecycle.Event{}, false
}

func (m clientMessage) viewport() viewport.Viewport {
	return viewport.New(m.Width, m.Height).WithDensity(m.DPR)
}

// asciiMessage carries one ASCII overlay frame.
type asciiMessage struct {
	Type       string   `json:"type"`
	Text       string   `json:"text"`
	Cols       int      `json:"cols"`
	Rows       int      `json:"rows"`
	Hue        float64  `json:"hue"`
	Gradient   []string `json:"gradient"`
	Blend      string   `json:"blend"`
	Background string   `json:"background"`
}

// frameHeader is the size of the binary pixel frame header.
const frameHeader = 8

// encodeFrame serialises f into a websocket message. Overlay frames are JSON
// text; pixel frames are binary: width and height as little-endian uint32
// followed by the RGBA bytes row by row.
func encodeFrame(f effect.Frame) (int, []byte, error) {
	if f.Overlay != nil {
		o := f.Overlay
		grad := make([]string, len(o.Gradient))
		for i, c := range o.Gradient {
			grad[i] = c.Hex()
		}
		data, err := json.Marshal(asciiMessage{
			Type:       "ascii",
			Text:       o.Grid.Text(),
			Cols:       o.Grid.Cols,
			Rows:       o.Grid.Rows,
			Hue:        o.Hue,
			Gradient:   grad,
			Blend:      o.Blend,
			Background: f.Background.Hex(),
		})
		return websocket.TextMessage, data, err
	}
	if f.Image == nil {
		return 0, nil, fmt.Errorf("empty frame")
	}
	b := f.Image.Bounds()
	w, h := b.Dx(), b.Dy()
	data := make([]byte, frameHeader+w*h*4)
	binary.LittleEndian.PutUint32(data[0:4], uint32(w))
	binary.LittleEndian.PutUint32(data[4:8], uint32(h))
	out := data[frameHeader:]
	for y := 0; y < h; y++ {
		i := f.Image.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out[y*w*4:(y+1)*w*4], f.Image.Pix[i:i+w*4])
	}
	return websocket.BinaryMessage, data, nil
}
