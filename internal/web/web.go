// Package web serves the local read-only HTTP surface: health, prometheus
// metrics and the renderer-bridge projection any front end can consume.
package web

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RubberMartyr/jvgh-kantinedienst/internal/config"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/engine"
	appLog "github.com/RubberMartyr/jvgh-kantinedienst/internal/log"
)

// Server exposes /health, /metrics, /api/events and /api/days. The engine is
// confined to its own goroutine, so handlers never touch it directly; the
// daemon pushes projection snapshots in via SetSnapshot after every render.
type Server struct {
	cfg *config.Config
	mux *http.ServeMux

	mu     sync.RWMutex
	events []engine.Event
	days   map[string]engine.SlotStatus
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg: cfg,
		mux: http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// SetSnapshot replaces the served projection. Safe to call from the engine's
// goroutine while handlers are reading.
func (s *Server) SetSnapshot(events []engine.Event, days map[string]engine.SlotStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
	s.days = days
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.HandleFunc("/api/days", s.handleDays)
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password counts as disabled.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health stays reachable without credentials.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Kantinedienst", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	events := s.events
	s.mu.RUnlock()

	if events == nil {
		events = []engine.Event{}
	}
	writeJSON(w, map[string]any{"events": events})
}

func (s *Server) handleDays(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	days := s.days
	s.mu.RUnlock()

	if days == nil {
		days = map[string]engine.SlotStatus{}
	}
	writeJSON(w, map[string]any{"days": days})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("could not encode response", err)
	}
}

// StartServer starts an HTTP server bound to cfg.Listen.
func StartServer(cfg *config.Config, s *Server) error {
	appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
	return http.ListenAndServe(cfg.Listen, s.Handler())
}
