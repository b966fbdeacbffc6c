package observability

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HealthStatus struct {
	Status      string    `json:"status"`
	LastRun     time.Time `json:"last_run,omitempty"`
	LastFailure string    `json:"last_failure,omitempty"`
}

// HealthFunc reports the current generator status.
type HealthFunc func(ctx context.Context) HealthStatus

// Server exposes /metrics and /health over HTTP.
type Server struct {
	addr    string
	health  HealthFunc
	version string
	server  *http.Server
}

func NewServer(addr string, health HealthFunc) *Server {
	return &Server{addr: addr, health: health, version: "dev"}
}

// WithVersion sets the version reported by /openapi.json.
func (s *Server) WithVersion(v string) *Server {
	s.version = v
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := HealthStatus{Status: "up"}
		if s.health != nil {
			status = s.health(r.Context())
		}
		w.Header().Set("Content-Type", "application/json")
		if status.Status != "up" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(status)
	})
	mux.HandleFunc("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(APIDocument(s.version))
	})
	return mux
}

func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("observability server starting", "addr", s.addr)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("observability server failed", "error", err)
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
