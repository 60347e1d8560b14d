// Package server exposes a loaded dataset over HTTP.
//
// Routes:
//
//	GET  /healthz                          liveness and build info
//	GET  /v1/chromosomes                   chromosomes and normalization stats
//	GET  /v1/score?chrom=&pos1=&pos2=      normalized score of one pair
//	POST /v1/detect                        run detection, store and return the run
//	GET  /v1/runs/{id}                     a stored run
//	GET  /v1/samples/{sample}/clusters     stored clusters of one sample
//	GET  /v1/graph/{sample}/{chrom}        breakpoint graph as DOT or SVG
//	GET  /metrics                          Prometheus metrics, when configured
//
// Errors are JSON objects with "code" and "error" fields; the HTTP status
// follows the error code.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/hicluster/pkg/observability"
	"github.com/matzehuels/hicluster/pkg/pipeline"
	"github.com/matzehuels/hicluster/pkg/store"
)

// Config configures a Server.
type Config struct {
	Runner *pipeline.Runner
	// Store keeps detection runs. Nil selects an in-memory store.
	Store store.Store
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// Defaults are applied to detect requests before their own fields.
	Defaults pipeline.Options
	// RequestTimeout bounds every request. Zero disables the limit.
	RequestTimeout time.Duration
	Logger         *log.Logger
}

// Server serves the HTTP API.
type Server struct {
	cfg    Config
	logger *log.Logger
}

// New returns a Server for cfg.
func New(cfg Config) *Server {
	if cfg.Store == nil {
		cfg.Store = store.NewMemoryStore()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{cfg: cfg, logger: logger}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}

	r.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics)
	}
	r.Route("/v1", func(r chi.Router) {
		r.Get("/chromosomes", s.handleChromosomes)
		r.Get("/score", s.handleScore)
		r.Post("/detect", s.handleDetect)
		r.Get("/runs/{id}", s.handleRun)
		r.Get("/samples/{sample}/clusters", s.handleSampleClusters)
		r.Get("/graph/{sample}/{chrom}", s.handleGraph)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// observe reports every request to the HTTP hooks under its route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.HTTP().OnRequest(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status, "duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
