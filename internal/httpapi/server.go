// Package httpapi exposes lead scoring and call evaluation over HTTP.
// Handlers are stateless; every request is computed from its body alone.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/brickmetric/leadpulse/internal/calls"
	"github.com/brickmetric/leadpulse/internal/leads"
)

// Server wires the scoring and evaluation cores into an HTTP handler.
type Server struct {
	scorer    *leads.Scorer
	evaluator *calls.Evaluator
	version   string
	// maxResults is the ranking limit used when a request does not carry
	// its own max_results. Non-positive falls back to the scorer default.
	maxResults int
	logger     *zap.Logger
}

func NewServer(scorer *leads.Scorer, evaluator *calls.Evaluator, version string, maxResults int, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	return &Server{
		scorer:     scorer,
		evaluator:  evaluator,
		version:    version,
		maxResults: maxResults,
		logger:     log,
	}
}

// Handler returns the routed handler with request-id, logging and recover
// middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/lead-priority", s.handleLeadPriority)
	mux.HandleFunc("POST /api/v1/call-eval", s.handleCallEval)
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleIndex)

	return withRequestID(s.withRequestLog(s.withRecover(mux)))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	s.logger.Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server listen: %w", err)
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
