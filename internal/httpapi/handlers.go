package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/talentflow/orchestrator/internal/config"
	"github.com/talentflow/orchestrator/internal/experiment"
	"github.com/talentflow/orchestrator/internal/workflow"
)

type submitRequest struct {
	WorkflowType string `json:"workflow_type"`
	CandidateID  string `json:"candidate_id"`
	RoleID       string `json:"role_id"`
	Priority     string `json:"priority,omitempty"`
	// Sync runs the workflow to completion before answering.
	Sync bool `json:"sync,omitempty"`

	Strategy  string `json:"strategy,omitempty"`
	TimeoutMs int64  `json:"timeout_ms,omitempty"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	// The limiter follows the live config so rate changes from the admin API
	// and from file reloads both take effect. SetRate is a no-op when the
	// rate is unchanged.
	s.limiter.SetRate(s.cfg.Current().SubmitRatePerMinute)
	if !s.limiter.Allow() {
		s.writeError(w, http.StatusTooManyRequests, "submission rate limit exceeded")
		return
	}

	var req submitRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	wfType, err := workflow.ParseType(req.WorkflowType)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	priority, err := workflow.ParsePriority(req.Priority)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	wfReq := workflow.Request{
		WorkflowType: wfType,
		CandidateID:  req.CandidateID,
		RoleID:       req.RoleID,
		Priority:     priority,
	}
	if req.Strategy != "" || req.TimeoutMs > 0 {
		wfReq.Override = &workflow.Override{Strategy: req.Strategy, TimeoutMs: req.TimeoutMs}
	}

	if req.Sync {
		rec, err := s.engine.ExecuteWorkflow(r.Context(), wfReq)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, rec)
		return
	}

	rec, err := s.engine.SubmitWorkflow(r.Context(), wfReq)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, rec)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, ok := s.engine.GetWorkflowStatus(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "workflow not found")
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ok, msg := s.engine.CancelWorkflow(id)
	status := http.StatusOK
	if !ok {
		status = http.StatusConflict
		if _, found := s.engine.GetWorkflowStatus(id); !found {
			status = http.StatusNotFound
		}
	}
	s.writeJSON(w, status, map[string]any{"success": ok, "message": msg})
}

func (s *Server) handleServiceHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"services": s.engine.ServiceHealth()})
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.PerformanceMetrics())
}

func (s *Server) handleRegisterExperiment(w http.ResponseWriter, r *http.Request) {
	var cfg experiment.Config
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := s.engine.RegisterExperiment(cfg); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"success": true, "test_id": cfg.TestID})
}

// updateConfigRequest carries durations in milliseconds so callers do not
// deal in nanosecond integers.
type updateConfigRequest struct {
	FallbackStrategy     *string          `json:"fallback_strategy,omitempty"`
	DefaultTimeoutMs     *int64           `json:"default_timeout_ms,omitempty"`
	DependencyTimeoutsMs map[string]int64 `json:"dependency_timeouts_ms,omitempty"`
	CacheTTLMs           *int64           `json:"cache_ttl_ms,omitempty"`
	MaxConcurrentCalls   *int             `json:"max_concurrent_calls,omitempty"`
	SubmitRatePerMinute  *int             `json:"submit_rate_per_minute,omitempty"`
}

// configView renders a Config with millisecond durations.
type configView struct {
	FallbackStrategy     string           `json:"fallback_strategy"`
	DefaultTimeoutMs     int64            `json:"default_timeout_ms"`
	DependencyTimeoutsMs map[string]int64 `json:"dependency_timeouts_ms,omitempty"`
	CacheTTLMs           int64            `json:"cache_ttl_ms"`
	MaxConcurrentCalls   int              `json:"max_concurrent_calls"`
	SubmitRatePerMinute  int              `json:"submit_rate_per_minute"`
}

func viewOf(c *config.Config) configView {
	v := configView{
		FallbackStrategy:    c.FallbackStrategy,
		DefaultTimeoutMs:    c.DefaultTimeout.Milliseconds(),
		CacheTTLMs:          c.CacheTTL.Milliseconds(),
		MaxConcurrentCalls:  c.MaxConcurrentCalls,
		SubmitRatePerMinute: c.SubmitRatePerMinute,
	}
	if len(c.DependencyTimeouts) > 0 {
		v.DependencyTimeoutsMs = make(map[string]int64, len(c.DependencyTimeouts))
		for name, d := range c.DependencyTimeouts {
			v.DependencyTimeoutsMs[name] = d.Milliseconds()
		}
	}
	return v
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req updateConfigRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	override := config.Override{
		FallbackStrategy:    req.FallbackStrategy,
		MaxConcurrentCalls:  req.MaxConcurrentCalls,
		SubmitRatePerMinute: req.SubmitRatePerMinute,
	}
	if req.DefaultTimeoutMs != nil {
		d := time.Duration(*req.DefaultTimeoutMs) * time.Millisecond
		override.DefaultTimeout = &d
	}
	if req.CacheTTLMs != nil {
		d := time.Duration(*req.CacheTTLMs) * time.Millisecond
		override.CacheTTL = &d
	}
	if len(req.DependencyTimeoutsMs) > 0 {
		override.DependencyTimeouts = make(map[string]time.Duration, len(req.DependencyTimeoutsMs))
		for name, ms := range req.DependencyTimeoutsMs {
			override.DependencyTimeouts[name] = time.Duration(ms) * time.Millisecond
		}
	}

	previous, err := s.engine.UpdateConfig(override)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Info("Configuration updated via admin API",
		zap.Any("override", req),
	)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"previous_config": viewOf(previous),
	})
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	n := s.engine.ClearCache(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true, "cleared_entries": n})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
