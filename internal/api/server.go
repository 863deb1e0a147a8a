// Package api exposes the allocation engine and the ledger over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/surebet/internal/config"
	"github.com/yourusername/surebet/internal/health"
	"github.com/yourusername/surebet/internal/metrics"
)

// NewRouter builds the chi router with middleware and every route mounted
func NewRouter(cfg *config.Config, handler *Handler, checker *health.Checker, log *logrus.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout()))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", OwnerHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", checker.Health)
	r.Get("/live", checker.Live)
	r.Get("/ready", checker.Ready)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimit(cfg.Server.RateLimitPerSecond, cfg.Server.RateLimitBurst))

		r.Post("/allocations", handler.Allocate)
		r.Post("/allocations/fix", handler.Fix)

		r.Route("/ledger", func(r chi.Router) {
			r.Use(RequireOwner)
			r.Get("/", handler.ListLedger)
			r.Post("/", handler.RecordLedger)
			r.Patch("/{id}", handler.AnnotateLedger)
			r.Delete("/{id}", handler.RemoveLedger)
		})
	})

	return r
}

// Server wraps the HTTP server lifecycle
type Server struct {
	server  *http.Server
	checker *health.Checker
	logger  *logrus.Logger
}

// NewServer creates an HTTP server listening on the configured port
func NewServer(cfg *config.Config, handler *Handler, checker *health.Checker, log *logrus.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      NewRouter(cfg, handler, checker, log),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: cfg.RequestTimeout() + 5*time.Second,
			IdleTimeout:  60 * time.Second,
		},
		checker: checker,
		logger:  log,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	// errCh receives nil when the server was closed without a shutdown from Run
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.server.Addr).Info("API server starting")
		err := s.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	s.checker.SetReady(true)

	select {
	case err := <-errCh:
		s.checker.SetReady(false)
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
		s.logger.Info("API server closed")
		return nil
	case <-ctx.Done():
	}

	s.checker.SetReady(false)
	s.logger.Info("API server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	return nil
}
