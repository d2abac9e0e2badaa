// Package server exposes the adaptation pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz                 liveness check
//	GET  /metrics                 Prometheus exposition (when configured)
//	POST /v1/adapt                adapt a template to a circuit
//	POST /v1/rank                 rank the corpus against a circuit
//	POST /v1/distance             heuristic distance between two graphs
//	POST /v1/diff                 first-round edit script between two graphs
//	GET  /v1/templates            list corpus template names
//	GET  /v1/templates/{name}     fetch one corpus template
//
// Errors are returned as {"error": {"code": ..., "message": ...}} with the
// status given by errors.HTTPStatus.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/schemadapt/pkg/corpus"
	"github.com/matzehuels/schemadapt/pkg/observability"
	"github.com/matzehuels/schemadapt/pkg/pipeline"
)

// Defaults applied by New.
const (
	DefaultAddr           = "127.0.0.1:8710"
	DefaultMaxBodyBytes   = 8 << 20
	DefaultRequestTimeout = 2 * time.Minute
)

// Config holds the configuration for the HTTP server.
type Config struct {
	Addr string // listen address (default: DefaultAddr)

	// Runner executes requests. Required.
	Runner *pipeline.Runner

	// Corpus backs /v1/rank and /v1/templates. Those routes fail with
	// INVALID_INPUT when it is nil.
	Corpus corpus.Source

	// CorpusRoot, when set, lets rank requests name a "collection": a
	// subdirectory of CorpusRoot holding template files.
	CorpusRoot string

	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler

	Logger         *log.Logger
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

// Server is the schemadapt HTTP API.
type Server struct {
	cfg    Config
	router chi.Router
	logger *log.Logger
}

// New creates a Server and builds its routes.
func New(cfg Config) (*Server, error) {
	if cfg.Runner == nil {
		return nil, errors.New("server: runner is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	s := &Server{cfg: cfg, logger: cfg.Logger}
	s.router = s.buildRouter()
	return s, nil
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.cfg.Addr }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down", "addr", s.cfg.Addr)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// buildRouter constructs the chi router with all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		r.Use(middleware.AllowContentType("application/json"))

		r.Post("/adapt", s.handleAdapt)
		r.Post("/rank", s.handleRank)
		r.Post("/distance", s.handleDistance)
		r.Post("/diff", s.handleDiff)

		r.Get("/templates", s.handleTemplateList)
		r.Get("/templates/{name}", s.handleTemplateGet)
	})

	return r
}

// instrument reports every request to the server hooks and the debug log.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		observability.Server().OnRequest(r.Context(), r.Method, route, status, elapsed)
		s.logger.Debug("Request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", elapsed.Round(time.Microsecond))
	})
}
