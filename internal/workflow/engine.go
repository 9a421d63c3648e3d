// Package workflow implements the orchestration engine: a state machine that
// fans one evaluation request out to its dependency subset, collects partial
// results through the fallback adapter, and aggregates them into a summary.
package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talentflow/orchestrator/internal/adapter"
	"github.com/talentflow/orchestrator/internal/aggregate"
	"github.com/talentflow/orchestrator/internal/cache"
	"github.com/talentflow/orchestrator/internal/config"
	"github.com/talentflow/orchestrator/internal/ensemble"
	"github.com/talentflow/orchestrator/internal/experiment"
	"github.com/talentflow/orchestrator/internal/health"
	"github.com/talentflow/orchestrator/internal/metrics"
	"github.com/talentflow/orchestrator/internal/profiles"
	"github.com/talentflow/orchestrator/internal/scoring"
	"github.com/talentflow/orchestrator/internal/semantic"
)

// AlignmentPromptTest is the experiment governing the alignment prompt
// variant. Subjects are bucketed by candidate id.
const AlignmentPromptTest = "alignment_prompt"

// Deps are the collaborators injected into the engine. Everything is
// constructed explicitly so tests can substitute fakes and multiple engines
// can coexist.
type Deps struct {
	Provider  profiles.Provider
	Adapter   *adapter.Adapter
	Matcher   *semantic.Matcher
	Predictor *ensemble.Predictor
	Assessor  *scoring.Assessor
	Scorer    *scoring.Scorer
	Assigner  *experiment.Assigner
	Aggregate *aggregate.Aggregator
	Monitor   *health.Monitor
	Store     cache.Store
	Config    *config.Manager
	Collector *metrics.Collector
	Logger    *zap.Logger

	// CompletionProbe is the background reachability check shared by the
	// completion-backed dependencies. Nil leaves those records to be refreshed
	// by live calls only.
	CompletionProbe health.Probe
}

// Engine owns every workflow record. Records are mutated only by the engine
// and handed out as copies.
type Engine struct {
	deps Deps

	mu      sync.RWMutex
	records map[string]*Result
}

// NewEngine creates an engine, registers the dependency fallbacks on the
// adapter, and installs the background health probes.
func NewEngine(deps Deps) *Engine {
	registerSpecs(deps.Adapter)
	registerProbes(deps)
	return &Engine{
		deps:    deps,
		records: make(map[string]*Result),
	}
}

// registerProbes wires every dependency into the background prober: the
// in-process dependencies are exercised directly with throwaway inputs, the
// completion-backed ones share the provider reachability check.
func registerProbes(deps Deps) {
	deps.Monitor.Register(DepSemanticAnalysis, func(context.Context) error {
		deps.Matcher.AnalyzeSkills(nil, nil)
		return nil
	})
	deps.Monitor.Register(DepEnsemblePrediction, func(context.Context) error {
		_, err := deps.Predictor.Predict(ensemble.Models(&profiles.Candidate{}, &profiles.Role{}))
		return err
	})
	deps.Monitor.Register(DepAssessment, func(context.Context) error {
		deps.Assessor.Assess(&profiles.Candidate{}, &profiles.Role{}, scoring.FocusGeneral)
		return nil
	})
	for _, name := range []string{DepAlignment, DepSkillsGap, DepInterviewQuestions, DepCulturalFit} {
		deps.Monitor.Register(name, deps.CompletionProbe)
	}
}

// ExecuteWorkflow runs a workflow to completion and returns its final record.
func (e *Engine) ExecuteWorkflow(ctx context.Context, req Request) (*Result, error) {
	id, err := e.create(req)
	if err != nil {
		return nil, err
	}
	e.run(ctx, id, req)
	rec, _ := e.GetWorkflowStatus(id)
	return rec, nil
}

// SubmitWorkflow starts a workflow in the background and returns its pending
// record immediately. The run outlives the caller's context.
func (e *Engine) SubmitWorkflow(_ context.Context, req Request) (*Result, error) {
	id, err := e.create(req)
	if err != nil {
		return nil, err
	}
	go e.run(context.Background(), id, req)
	rec, _ := e.GetWorkflowStatus(id)
	return rec, nil
}

// GetWorkflowStatus returns a copy of the record for id.
func (e *Engine) GetWorkflowStatus(id string) (*Result, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rec, ok := e.records[id]
	if !ok {
		return nil, false
	}
	return rec.clone(), true
}

// CancelWorkflow flips a running workflow to cancelled. Cancellation is
// advisory: already-issued dependency calls are not preempted, and their
// results are discarded when they settle.
func (e *Engine) CancelWorkflow(id string) (bool, string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.records[id]
	if !ok {
		return false, fmt.Sprintf("workflow %s not found", id)
	}
	if rec.Status != StatusRunning {
		return false, fmt.Sprintf("workflow %s is %s and cannot be cancelled", id, rec.Status)
	}

	rec.Status = StatusCancelled
	end := time.Now()
	rec.Metadata.EndTime = &end
	rec.Metadata.DurationMs = end.Sub(rec.Metadata.StartTime).Milliseconds()
	e.deps.Logger.Info("Workflow cancelled", zap.String("workflow_id", id))
	return true, "workflow cancelled"
}

// ServiceHealth returns the current per-dependency health records.
func (e *Engine) ServiceHealth() []health.ServiceHealth {
	return e.deps.Monitor.Snapshot()
}

// PerformanceMetrics returns the request-level counters snapshot.
func (e *Engine) PerformanceMetrics() metrics.PerformanceMetrics {
	return e.deps.Collector.Snapshot()
}

// ClearCache drops every cached dependency result and returns the count.
func (e *Engine) ClearCache(ctx context.Context) int {
	n := e.deps.Store.Clear(ctx)
	e.deps.Logger.Info("Dependency cache cleared", zap.Int("entries", n))
	return n
}

// UpdateConfig applies a partial configuration override and returns the
// previous configuration.
func (e *Engine) UpdateConfig(o config.Override) (*config.Config, error) {
	return e.deps.Config.Update(o)
}

// RegisterExperiment validates and stores an experiment configuration.
func (e *Engine) RegisterExperiment(cfg experiment.Config) error {
	return e.deps.Assigner.Register(cfg)
}

// create stores a fresh pending record. Ids are unique and never reused.
func (e *Engine) create(req Request) (string, error) {
	if req.CandidateID == "" || req.RoleID == "" {
		return "", fmt.Errorf("candidate_id and role_id are required")
	}
	if req.Priority == "" {
		req.Priority = PriorityMedium
	}

	id := uuid.NewString()
	rec := &Result{
		ID:           id,
		WorkflowType: req.WorkflowType,
		Status:       StatusPending,
		Results:      make(map[string]any),
		Metadata: Metadata{
			StartTime: time.Now(),
			Errors:    []string{},
		},
	}

	e.mu.Lock()
	e.records[id] = rec
	e.mu.Unlock()

	e.deps.Logger.Info("Workflow submitted",
		zap.String("workflow_id", id),
		zap.String("workflow_type", string(req.WorkflowType)),
		zap.String("candidate_id", req.CandidateID),
		zap.String("role_id", req.RoleID),
	)
	return id, nil
}

// run drives one workflow from pending to a terminal state.
func (e *Engine) run(ctx context.Context, id string, req Request) {
	start := time.Now()
	e.transition(id, StatusRunning)
	e.setProgress(id, 10)
	metrics.WorkflowsStarted.WithLabelValues(string(req.WorkflowType), string(req.Priority)).Inc()

	names, err := plan(req.WorkflowType)
	if err != nil {
		e.finish(id, req, StatusFailed, start, err)
		return
	}

	candidate, err := e.deps.Provider.Candidate(ctx, req.CandidateID)
	if err != nil {
		e.finish(id, req, StatusFailed, start, fmt.Errorf("load candidate %s: %w", req.CandidateID, err))
		return
	}
	role, err := e.deps.Provider.Role(ctx, req.RoleID)
	if err != nil {
		e.finish(id, req, StatusFailed, start, fmt.Errorf("load role %s: %w", req.RoleID, err))
		return
	}
	e.setProgress(id, 20)

	variants := e.assignVariants(id, req.CandidateID)
	alignVariant := variants[AlignmentPromptTest]

	outcomes := e.fanOut(ctx, req, names, candidate, role, alignVariant)
	e.setProgress(id, 80)

	var fatal error
	e.mu.Lock()
	rec := e.records[id]
	if rec.Status == StatusCancelled {
		// Cancelled mid-flight: the settled outcomes are discarded.
		e.mu.Unlock()
		e.finish(id, req, StatusCancelled, start, nil)
		return
	}
	for i, name := range names {
		out := outcomes[i]
		if out.Err != nil {
			rec.Metadata.Errors = append(rec.Metadata.Errors, out.Err.Error())
			if !out.FellBack {
				fatal = out.Err
				continue
			}
		}
		rec.Results[name] = out.Value
	}
	results := make(map[string]any, len(rec.Results))
	for k, v := range rec.Results {
		results[k] = v
	}
	e.mu.Unlock()

	if fatal != nil {
		e.finish(id, req, StatusFailed, start, nil)
		return
	}

	summary := e.deps.Aggregate.Aggregate(results)

	e.mu.Lock()
	rec.Summary = &summary
	e.mu.Unlock()

	e.finish(id, req, StatusCompleted, start, nil)
}

// fanOut issues every planned dependency call concurrently and waits for all
// of them to settle. A sibling failure never aborts the others.
func (e *Engine) fanOut(ctx context.Context, req Request, names []string, candidate *profiles.Candidate, role *profiles.Role, alignVariant string) []adapter.Outcome {
	cfg := e.deps.Config.Current()
	strategy := adapter.Strategy(cfg.FallbackStrategy)
	if req.Override != nil && req.Override.Strategy != "" {
		if s, err := adapter.ParseStrategy(req.Override.Strategy); err == nil {
			strategy = s
		}
	}
	cacheTTL := cfg.CacheTTL
	if req.Override != nil && req.Override.CacheTTL > 0 {
		cacheTTL = req.Override.CacheTTL
	}

	var sem chan struct{}
	if cfg.MaxConcurrentCalls > 0 {
		sem = make(chan struct{}, cfg.MaxConcurrentCalls)
	}

	focus := assessmentFocus(req.WorkflowType)
	outcomes := make([]adapter.Outcome, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		timeout := cfg.TimeoutFor(name)
		if req.Override != nil && req.Override.TimeoutMs > 0 {
			timeout = time.Duration(req.Override.TimeoutMs) * time.Millisecond
		}
		opts := adapter.Options{Timeout: timeout, Strategy: strategy, CacheTTL: cacheTTL}
		params := callParams{
			Candidate: req.CandidateID,
			Role:      req.RoleID,
			Extra:     paramExtra(name, focus, alignVariant),
		}
		fn := e.callFor(name, candidate, role, focus, alignVariant)

		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			outcomes[i] = e.deps.Adapter.Call(ctx, name, params, fn, opts)
		}(i, name)
	}
	wg.Wait()
	return outcomes
}

// callParams feeds the cache key. Extra disambiguates calls whose output
// depends on more than the candidate/role pair.
type callParams struct {
	Candidate string `json:"candidate"`
	Role      string `json:"role"`
	Extra     string `json:"extra,omitempty"`
}

func paramExtra(name string, focus scoring.Focus, alignVariant string) string {
	switch name {
	case DepAssessment:
		return string(focus)
	case DepAlignment:
		return alignVariant
	default:
		return ""
	}
}

// callFor maps a dependency name to its invocation.
func (e *Engine) callFor(name string, candidate *profiles.Candidate, role *profiles.Role, focus scoring.Focus, alignVariant string) adapter.CallFunc {
	switch name {
	case DepSemanticAnalysis:
		return func(ctx context.Context) (any, error) {
			analysis := e.deps.Matcher.AnalyzeSkills(candidate.Skills, role.RequiredSkills)
			return &analysis, nil
		}
	case DepEnsemblePrediction:
		return func(ctx context.Context) (any, error) {
			pred, err := e.deps.Predictor.Predict(ensemble.Models(candidate, role))
			if err != nil {
				return nil, err
			}
			return &pred, nil
		}
	case DepAssessment:
		return func(ctx context.Context) (any, error) {
			return e.deps.Assessor.Assess(candidate, role, focus), nil
		}
	case DepAlignment:
		return func(ctx context.Context) (any, error) {
			return e.deps.Scorer.ScoreAlignment(ctx, candidate, role, alignVariant)
		}
	case DepSkillsGap:
		return func(ctx context.Context) (any, error) {
			return e.deps.Scorer.AnalyzeSkillsGap(ctx, candidate, role)
		}
	case DepInterviewQuestions:
		return func(ctx context.Context) (any, error) {
			return e.deps.Scorer.GenerateInterviewQuestions(ctx, candidate, role)
		}
	case DepCulturalFit:
		return func(ctx context.Context) (any, error) {
			return e.deps.Scorer.ScoreCulturalFit(ctx, candidate, role)
		}
	default:
		return func(ctx context.Context) (any, error) {
			return nil, fmt.Errorf("no call registered for dependency %s", name)
		}
	}
}

// assignVariants buckets the candidate into every registered experiment and
// records the assignments on the workflow.
func (e *Engine) assignVariants(id, candidateID string) map[string]string {
	assigned := make(map[string]string)
	for _, cfg := range e.deps.Assigner.Configs() {
		variant, err := e.deps.Assigner.Assign(cfg.TestID, candidateID)
		if err != nil {
			continue
		}
		assigned[cfg.TestID] = variant.ID
	}
	if len(assigned) == 0 {
		return assigned
	}

	e.mu.Lock()
	if rec, ok := e.records[id]; ok {
		rec.Metadata.Experiment = assigned
	}
	e.mu.Unlock()
	return assigned
}

// transition applies a guarded state change.
func (e *Engine) transition(id string, to Status) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.records[id]
	if !ok || !canTransition(rec.Status, to) {
		return false
	}
	rec.Status = to
	return true
}

// setProgress advances progress monotonically.
func (e *Engine) setProgress(id string, p int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if rec, ok := e.records[id]; ok && p > rec.Progress {
		rec.Progress = p
	}
}

// finish moves the workflow to a terminal state, unless it was cancelled in
// the meantime, and records timing. fatalErr is appended to metadata.errors
// when set.
func (e *Engine) finish(id string, req Request, status Status, start time.Time, fatalErr error) {
	end := time.Now()

	e.mu.Lock()
	rec, ok := e.records[id]
	if !ok {
		e.mu.Unlock()
		return
	}
	if fatalErr != nil {
		rec.Metadata.Errors = append(rec.Metadata.Errors, fatalErr.Error())
	}
	if canTransition(rec.Status, status) {
		rec.Status = status
		if status == StatusCompleted {
			rec.Progress = 100
		}
		rec.Metadata.EndTime = &end
		rec.Metadata.DurationMs = end.Sub(start).Milliseconds()
	}
	final := rec.Status
	e.mu.Unlock()

	duration := end.Sub(start)
	metrics.RecordWorkflow(string(req.WorkflowType), string(final), duration.Seconds())
	e.deps.Collector.RecordRequest(final == StatusCompleted, duration)

	e.deps.Logger.Info("Workflow finished",
		zap.String("workflow_id", id),
		zap.String("workflow_type", string(req.WorkflowType)),
		zap.String("status", string(final)),
		zap.Duration("duration", duration),
	)
}
