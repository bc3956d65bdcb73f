// Package ops serves the operational endpoints (health, metrics, pprof) on a
// listener separate from the public API.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gomarkov/internal"
	"gomarkov/internal/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sqlx.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server is the ops listener.
type Server struct {
	router chi.Router
	cfg    config.OpsConfig
	db     Pinger
	logger *internal.Logger

	httpServer *http.Server
}

// NewServer builds the ops router. db may be nil when no database is configured.
func NewServer(cfg config.OpsConfig, gatherer prometheus.Gatherer, db Pinger, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		db:     db,
		logger: logger.With("component", "ops"),
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Heartbeat("/ping"))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	if cfg.Profiling {
		s.router.Mount("/debug", middleware.Profiler())
	}

	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	status := http.StatusOK

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("database ping failed: %v", err)
			resp.Status = "degraded"
			resp.Database = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("failed to write health response: %v", err)
	}
}

// Start listens on the ops port until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("ops server listening on :%s (profiling=%t)", s.cfg.Port, s.cfg.Profiling)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
