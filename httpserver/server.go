// Package httpserver exposes the optimizer over HTTP.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/snow-ghost/planner/core"
	"github.com/snow-ghost/planner/optimizer"
	"github.com/snow-ghost/planner/pkg/limiter"
	"github.com/snow-ghost/planner/pkg/logging"
	"github.com/snow-ghost/planner/pkg/observability"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Options configures a Server. Optimizer and Catalog are required.
type Options struct {
	Addr           string
	Optimizer      *optimizer.Optimizer
	Catalog        core.Catalog
	Observability  *observability.Manager
	RateLimiter    *limiter.RateLimiter
	AllowedOrigins []string
}

// Server represents the HTTP server
type Server struct {
	addr      string
	logger    *logging.Logger
	obs       *observability.Manager
	optimizer *optimizer.Optimizer
	catalog   core.Catalog
	router    *http.ServeMux
	handler   http.Handler
	http      *http.Server
}

// NewServer creates a new HTTP server
func NewServer(opts Options) *Server {
	obs := opts.Observability
	if obs == nil {
		obs = observability.NewNopManager()
	}

	s := &Server{
		addr:      opts.Addr,
		logger:    obs.GetLogger(),
		obs:       obs,
		optimizer: opts.Optimizer,
		catalog:   opts.Catalog,
		router:    http.NewServeMux(),
	}
	s.setupRoutes()

	s.handler = chain(s.router,
		RequestIDMiddleware,
		RecoveryMiddleware(s.logger),
		LoggingMiddleware(s.logger),
		CORSMiddleware(opts.AllowedOrigins),
		RateLimitMiddleware(opts.RateLimiter, obs, "/health", "/metrics"),
	)
	return s
}

// setupRoutes configures all the HTTP routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth)
	s.router.Handle("/metrics", s.obs.GetMetrics().Handler())

	// Unversioned endpoint kept for the web client.
	s.router.HandleFunc("/optimize", s.handleOptimize)

	v1 := http.NewServeMux()
	v1.HandleFunc("/optimize", s.handleOptimize)
	v1.HandleFunc("/optimize/batch", s.handleBatch)
	v1.HandleFunc("/exercises", s.handleExercises)
	v1.HandleFunc("/strategies", s.handleStrategies)
	v1.HandleFunc("/cache", s.handleCache)

	s.router.Handle("/v1/", http.StripPrefix("/v1", v1))
}

// Handler returns the fully wrapped handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until Shutdown is called. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("starting HTTP server", "addr", s.addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
