package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/guidoenr/backdrop/internal/effect"
	"github.com/guidoenr/backdrop/internal/gpu"
	"github.com/guidoenr/backdrop/internal/lifecycle"
	"github.com/guidoenr/backdrop/internal/params"
	"github.com/guidoenr/backdrop/internal/theme"
	"github.com/guidoenr/backdrop/internal/viewport"
)

//go:embed static
var staticFiles embed.FS

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Config configures the browser host.
type Config struct {
	Params params.Config
	FPS    float64
	Theme  theme.Theme
	// Factory overrides render context creation for every session.
	Factory gpu.Factory
	Log     *log.Logger
}

// Server hosts one effect instance per websocket connection.
type Server struct {
	cfg      Config
	log      *log.Logger
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[*session]bool
	nextID   int
}

// SessionStatus describes one connected page.
type SessionStatus struct {
	ID     int    `json:"id"`
	Effect string `json:"effect"`
	State  string `json:"state"`
	Theme  string `json:"theme"`
}

// StatusResponse is served by /api/status.
type StatusResponse struct {
	Sessions []SessionStatus `json:"sessions"`
}

func NewServer(cfg Config) *Server {
	if cfg.Log == nil {
		cfg.Log = log.Default()
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 30
	}
	if cfg.Theme == "" {
		cfg.Theme = theme.Dark
	}
	return &Server{
		cfg:      cfg,
		log:      cfg.Log,
		sessions: make(map[*session]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the routes of the host.
func (s *Server) Handler() http.Handler {
	static, _ := fs.Sub(staticFiles, "static")
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.FS(static)))
	mux.HandleFunc("/api/effects", s.handleEffects)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Printf("[web] server starting on http://%s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.closeSessions()
	return nil
}

func (s *Server) handleEffects(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(effect.Names())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Status())
}

// Status snapshots the connected sessions ordered by id.
func (s *Server) Status() StatusResponse {
	s.mu.RLock()
	resp := StatusResponse{Sessions: make([]SessionStatus, 0, len(s.sessions))}
	for sess := range s.sessions {
		resp.Sessions = append(resp.Sessions, sess.status())
	}
	s.mu.RUnlock()
	sort.Slice(resp.Sessions, func(i, j int) bool {
		return resp.Sessions[i].ID < resp.Sessions[j].ID
	})
	return resp
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("effect")
	if name == "" {
		name = "dither"
	}
	sig := theme.NewSignal(s.cfg.Theme)
	if q := r.URL.Query().Get("theme"); q != "" {
		if t, err := theme.Parse(q); err == nil {
			sig.Set(t)
		}
	}
	e, err := effect.New(name, effect.Deps{Params: s.cfg.Params, Theme: sig, Log: s.log})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Printf("[web] websocket upgrade error: %v", err)
		return
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	sess := newSession(id, conn, e, sig, s.log)
	sess.manager = lifecycle.New(lifecycle.Config{
		Effect:  e,
		Factory: s.cfg.Factory,
		FPS:     s.cfg.FPS,
		Present: sess.present,
		Log:     s.log,
	})
	s.mu.Lock()
	s.sessions[sess] = true
	s.mu.Unlock()
	s.log.Printf("[web] session %d opened (%s)", sess.id, e.Name())

	go sess.writePump()
	go sess.readPump()
	go func() {
		// the page reports its size with a visible message
		if err := sess.manager.Run(context.Background(), viewport.Viewport{}); err != nil {
			s.log.Printf("[web] session %d: %v", sess.id, err)
		}
		sess.close()
		s.mu.Lock()
		delete(s.sessions, sess)
		s.mu.Unlock()
		s.log.Printf("[web] session %d closed", sess.id)
	}()
}

func (s *Server) closeSessions() {
	s.mu.RLock()
	open := make([]*session, 0, len(s.sessions))
	for sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.RUnlock()
	for _, sess := range open {
		sess.manager.Unmount()
	}
}
