package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/talentflow/orchestrator/internal/aggregate"
)

// Type selects which dependency subset a workflow fans out to.
type Type string

const (
	TypeComprehensive     Type = "comprehensive"
	TypeQuick             Type = "quick"
	TypeLeadership        Type = "leadership"
	TypeTechnicalDeepDive Type = "technical_deep_dive"
)

// ErrUnknownWorkflowType is fatal: the workflow fails before any dependency
// is invoked.
var ErrUnknownWorkflowType = errors.New("unknown workflow type")

// ParseType validates a workflow type string.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeComprehensive, TypeQuick, TypeLeadership, TypeTechnicalDeepDive:
		return Type(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownWorkflowType, s)
	}
}

// Priority is carried through for queue ordering and metrics labels.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority validates a priority string; empty defaults to medium.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return Priority(s), nil
	case "":
		return PriorityMedium, nil
	default:
		return "", fmt.Errorf("unknown priority %q", s)
	}
}

// Status is the workflow state machine position.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// canTransition enforces pending -> running -> {completed|failed|cancelled}.
func canTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusRunning
	case StatusRunning:
		return to == StatusCompleted || to == StatusFailed || to == StatusCancelled
	default:
		return false
	}
}

// Override carries per-request configuration overrides. Zero fields keep the
// engine defaults.
type Override struct {
	Strategy  string        `json:"strategy,omitempty"`
	TimeoutMs int64         `json:"timeout_ms,omitempty"`
	CacheTTL  time.Duration `json:"-"`
}

// Request describes one evaluation workflow. Immutable once submitted.
type Request struct {
	WorkflowType Type      `json:"workflow_type"`
	CandidateID  string    `json:"candidate_id"`
	RoleID       string    `json:"role_id"`
	Priority     Priority  `json:"priority"`
	Override     *Override `json:"override,omitempty"`
}

// Metadata is the diagnostic record of one run. Errors holds every absorbed
// or fatal error message verbatim.
type Metadata struct {
	StartTime  time.Time         `json:"start_time"`
	EndTime    *time.Time        `json:"end_time,omitempty"`
	DurationMs int64             `json:"duration_ms,omitempty"`
	Errors     []string          `json:"errors"`
	Experiment map[string]string `json:"experiment,omitempty"`
}

// Result is the engine-owned record of one workflow. Only the engine mutates
// it; callers always receive copies.
type Result struct {
	ID           string             `json:"id"`
	WorkflowType Type               `json:"workflow_type"`
	Status       Status             `json:"status"`
	Progress     int                `json:"progress"`
	Results      map[string]any     `json:"results"`
	Summary      *aggregate.Summary `json:"summary,omitempty"`
	Metadata     Metadata           `json:"metadata"`
}

// clone returns a copy safe to hand out while the engine keeps mutating the
// original. Result values themselves are treated as immutable once stored.
func (r *Result) clone() *Result {
	out := *r
	out.Results = make(map[string]any, len(r.Results))
	for k, v := range r.Results {
		out.Results[k] = v
	}
	out.Metadata.Errors = append([]string(nil), r.Metadata.Errors...)
	if r.Metadata.Experiment != nil {
		out.Metadata.Experiment = make(map[string]string, len(r.Metadata.Experiment))
		for k, v := range r.Metadata.Experiment {
			out.Metadata.Experiment[k] = v
		}
	}
	if r.Metadata.EndTime != nil {
		end := *r.Metadata.EndTime
		out.Metadata.EndTime = &end
	}
	if r.Summary != nil {
		s := *r.Summary
		out.Summary = &s
	}
	return &out
}
