// Package api exposes the analysis engine over HTTP with gin.
package api

import (
	"context"
	"errors"
	"net/http"

	"gomarkov/internal"
	"gomarkov/internal/analysis"
	"gomarkov/internal/config"
	"gomarkov/internal/metrics"
	"gomarkov/ports"

	"github.com/gin-gonic/gin"
)

// Version reported by the index endpoint.
const Version = "1.0.0"

// Server is the public analysis API.
type Server struct {
	router  *gin.Engine
	engine  *analysis.Engine
	cfg     config.ServerConfig
	upload  config.UploadConfig
	logger  *internal.Logger
	metrics *metrics.Metrics
	repo    ports.ObservationRepository

	httpServer *http.Server
}

// NewServer creates the API server and registers its routes. A nil logger
// falls back to internal.DefaultLogger; nil metrics disables instrumentation.
func NewServer(engine *analysis.Engine, cfg *config.Config, logger *internal.Logger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	gin.SetMode(cfg.Server.GinMode)

	s := &Server{
		router:  gin.New(),
		engine:  engine,
		cfg:     cfg.Server,
		upload:  cfg.Upload,
		logger:  logger.With("component", "api"),
		metrics: m,
	}
	s.router.MaxMultipartMemory = cfg.Upload.MaxBytes
	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestID())
	s.router.Use(s.observe())
	s.router.Use(limitBody(s.upload.MaxBytes))
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/health", s.handleHealth)

	// Spanish endpoint names are aliases of the English routes.
	for _, path := range []string{"/matrix", "/matriz"} {
		s.router.POST(path, s.handleMatrix)
	}
	for _, path := range []string{"/stationary", "/estacionario"} {
		s.router.POST(path, s.handleStationary)
	}
	for _, path := range []string{"/losses", "/perdidas"} {
		s.router.POST(path, s.handleLosses)
	}
	s.router.POST("/stress", s.handleStress)
	s.router.POST("/report", s.handleReport)

	s.router.GET("/portfolios", s.handleListPortfolios)
	s.router.GET("/portfolios/:portfolio/analysis", s.handlePortfolioAnalysis)
}

// WithObservationRepository enables the portfolio routes, which answer 404
// until a repository is set.
func (s *Server) WithObservationRepository(repo ports.ObservationRepository) *Server {
	s.repo = repo
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured port until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("API server listening on :%s", s.cfg.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
