package web

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/guidoenr/backdrop/internal/effect"
	"github.com/guidoenr/backdrop/internal/lifecycle"
	"github.com/guidoenr/backdrop/internal/theme"
)

type outbound struct {
	kind int
	data []byte
}

// session is one page connection driving its own effect instance.
type session struct {
	id      int
	conn    *websocket.Conn
	effect  string
	theme   *theme.Signal
	log     *log.Logger
	manager *lifecycle.Manager

	send      chan outbound
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(id int, conn *websocket.Conn, e effect.Effect, sig *theme.Signal, logger *log.Logger) *session {
	return &session{
		id:     id,
		conn:   conn,
		effect: e.Name(),
		theme:  sig,
		log:    logger,
		send:   make(chan outbound, 2),
		done:   make(chan struct{}),
	}
}

func (s *session) status() SessionStatus {
	return SessionStatus{
		ID:     s.id,
		Effect: s.effect,
		State:  s.manager.State().String(),
		Theme:  string(s.theme.Current()),
	}
}

// present encodes a frame and queues it, replacing the oldest queued frame
// when the page falls behind.
func (s *session) present(f effect.Frame) error {
	kind, data, err := encodeFrame(f)
	if err != nil {
		return err
	}
	msg := outbound{kind: kind, data: data}
	for {
		select {
		case <-s.done:
			return nil
		case s.send <- msg:
			return nil
		default:
		}
		select {
		case <-s.send:
		default:
		}
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *session) readPump() {
	defer s.manager.Unmount()

	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := decodeClientMessage(data)
		if err != nil {
			s.log.Printf("[web] session %d: %v", s.id, err)
			continue
		}
		s.handle(msg)
	}
}

func (s *session) handle(msg clientMessage) {
	if msg.Type == "theme" {
		if t, err := theme.Parse(msg.Value); err == nil {
			s.theme.Set(t)
		}
		return
	}
	ev, ok := msg.event()
	if !ok {
		return
	}
	if ev.Kind == lifecycle.Pointer {
		s.manager.TryDispatch(ev)
		return
	}
	s.manager.Dispatch(ev)
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(msg.kind, msg.data); err != nil {
				s.manager.Unmount()
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.manager.Unmount()
				return
			}
		case <-s.done:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
