package web

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/guidoenr/backdrop/internal/gpu"
	"github.com/guidoenr/backdrop/internal/params"
)

func newTestServer(t *testing.T, factory gpu.Factory) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(Config{
		Params:  params.Defaults(),
		FPS:     60,
		Factory: factory,
		Log:     log.New(io.Discard, "", 0),
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitSessions(t *testing.T, s *Server, want int) StatusResponse {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		st := s.Status()
		if len(st.Sessions) == want {
			return st
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected %d sessions, have %d", want, len(st.Sessions))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestEffectsEndpoint(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/api/effects")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var names []string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Join(names, ",") != "ascii,dither,shape" {
		t.Fatalf("effects = %v", names)
	}
}

func TestIndexIsServed(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "/api/effects") {
		t.Fatalf("unexpected index (%d)", resp.StatusCode)
	}
}

func TestUnknownEffectRejected(t *testing.T) {
	_, ts := newTestServer(t, nil)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?effect=nope"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("expected dial failure")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", resp)
	}
}

func TestSessionStreamsPixelFrames(t *testing.T) {
	s, ts := newTestServer(t, nil)
	conn := dial(t, ts, "effect=dither")
	defer conn.Close()

	st := waitSessions(t, s, 1)
	if st.Sessions[0].State != "awaiting-visibility" && st.Sessions[0].State != "unmounted" {
		t.Fatalf("session should wait for visibility, state=%s", st.Sessions[0].State)
	}

	if err := conn.WriteJSON(clientMessage{Type: "visible", Width: 40, Height: 20, DPR: 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	kind, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if kind != websocket.BinaryMessage {
		t.Fatalf("expected binary frame, got %d", kind)
	}
	w, h, _, err := decodePixelFrame(data)
	if err != nil || w != 40 || h != 20 {
		t.Fatalf("frame %dx%d: %v", w, h, err)
	}
	if st := s.Status(); st.Sessions[0].State != "running" || st.Sessions[0].Effect != "dither" {
		t.Fatalf("unexpected status %+v", st)
	}

	conn.Close()
	waitSessions(t, s, 0)
}

func TestFailingSessionDoesNotAffectOthers(t *testing.T) {
	calls := 0
	factory := func(w, h int) (*gpu.Context, error) {
		calls++
		if calls == 1 {
			return nil, io.ErrUnexpectedEOF
		}
		return gpu.New(w, h)
	}
	s, ts := newTestServer(t, factory)

	bad := dial(t, ts, "effect=dither")
	defer bad.Close()
	waitSessions(t, s, 1)
	bad.WriteJSON(clientMessage{Type: "visible", Width: 10, Height: 10, DPR: 1})
	bad.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := bad.ReadMessage(); err == nil {
		t.Fatalf("failed session should be closed")
	}
	waitSessions(t, s, 0)

	good := dial(t, ts, "effect=shape")
	defer good.Close()
	waitSessions(t, s, 1)
	good.WriteJSON(clientMessage{Type: "visible", Width: 16, Height: 12, DPR: 1})
	good.SetReadDeadline(time.Now().Add(5 * time.Second))
	kind, _, err := good.ReadMessage()
	if err != nil || kind != websocket.BinaryMessage {
		t.Fatalf("healthy session should stream frames: kind=%d err=%v", kind, err)
	}
}
