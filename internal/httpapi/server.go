// Package httpapi exposes the orchestrator over HTTP: workflow submission
// and polling, observability snapshots, and the admin surface.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/talentflow/orchestrator/internal/config"
	"github.com/talentflow/orchestrator/internal/ratecontrol"
	"github.com/talentflow/orchestrator/internal/workflow"
)

// Server wires the engine behind HTTP handlers.
type Server struct {
	engine  *workflow.Engine
	cfg     *config.Manager
	limiter *ratecontrol.SubmitLimiter
	logger  *zap.Logger

	httpServer *http.Server
}

// NewServer creates the HTTP server for the given engine.
func NewServer(engine *workflow.Engine, cfg *config.Manager, logger *zap.Logger) *Server {
	return &Server{
		engine:  engine,
		cfg:     cfg,
		limiter: ratecontrol.NewSubmitLimiter(cfg.Current().SubmitRatePerMinute),
		logger:  logger,
	}
}

// Handler returns the full route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/workflows", s.handleSubmit)
	mux.HandleFunc("GET /api/v1/workflows/{id}", s.handleStatus)
	mux.HandleFunc("POST /api/v1/workflows/{id}/cancel", s.handleCancel)

	mux.HandleFunc("GET /api/v1/health/services", s.handleServiceHealth)
	mux.HandleFunc("GET /api/v1/metrics/performance", s.handlePerformance)

	mux.HandleFunc("POST /api/v1/experiments", s.handleRegisterExperiment)

	mux.HandleFunc("POST /api/v1/admin/config", s.handleUpdateConfig)
	mux.HandleFunc("POST /api/v1/admin/cache/clear", s.handleClearCache)

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// Start serves on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("HTTP server listening", zap.String("addr", addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Response encode failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
