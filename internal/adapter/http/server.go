// Package http exposes the service's HTTP surface: health, readiness,
// metrics, and the run trigger endpoint.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/emberwatch/hotspot-etl-service/internal/domain"
	"github.com/emberwatch/hotspot-etl-service/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RunTrigger starts validation runs and reports readiness.
type RunTrigger interface {
	TriggerRun(ctx context.Context, overrides pipeline.Overrides) (pipeline.Summary, error)
	CheckReadiness(ctx context.Context) error
}

// Server exposes health, readiness, metrics, and run-trigger HTTP endpoints.
type Server struct {
	httpServer *http.Server
	runner     RunTrigger
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /v1/runs routes.
func NewServer(addr string, runner RunTrigger, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
			// Runs block until the FIRMS fetches and sink writes finish.
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		runner: runner,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("POST /v1/runs", s.handleRun)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.runner.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleRun triggers one pipeline run. The body is an optional JSON object of
// parameter overrides; an empty body runs with configured defaults.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var overrides pipeline.Overrides
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read request body: " + err.Error()})
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &overrides); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "decode request body: " + err.Error()})
			return
		}
	}

	summary, err := s.runner.TriggerRun(r.Context(), overrides)
	if err != nil {
		s.logger.Error("run failed", "error", err)
		writeJSON(w, runErrorStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// runErrorStatus maps pipeline failures onto HTTP statuses: rejected
// parameters are the caller's fault, upstream acquisition problems are a bad
// gateway, anything else is internal.
func runErrorStatus(err error) int {
	var acqErr *domain.AcquisitionError
	var emptyErr *domain.EmptyBatchError
	switch {
	case errors.Is(err, pipeline.ErrInvalidParams):
		return http.StatusUnprocessableEntity
	case errors.As(err, &acqErr), errors.As(err, &emptyErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
