// Package metrics exposes prometheus collectors for the orchestrator and an
// in-process snapshot collector backing the performance-metrics API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Workflow metrics
	WorkflowsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentflow_workflows_started_total",
			Help: "Total number of workflows started",
		},
		[]string{"workflow_type", "priority"},
	)

	WorkflowsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentflow_workflows_completed_total",
			Help: "Total number of workflows finished, by terminal status",
		},
		[]string{"workflow_type", "status"},
	)

	WorkflowDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "talentflow_workflow_duration_seconds",
			Help:    "Workflow execution duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"workflow_type"},
	)

	// Dependency metrics
	DependencyCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentflow_dependency_calls_total",
			Help: "Total dependency calls, by outcome",
		},
		[]string{"dependency", "outcome"},
	)

	DependencyLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "talentflow_dependency_latency_seconds",
			Help:    "Dependency call latency in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"dependency"},
	)

	FallbacksUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentflow_fallbacks_used_total",
			Help: "Total fallback substitutions, by dependency and strategy",
		},
		[]string{"dependency", "strategy"},
	)

	CircuitBreakerOpens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentflow_circuit_breaker_opens_total",
			Help: "Times a dependency circuit breaker opened",
		},
		[]string{"dependency"},
	)

	// Cache metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "talentflow_cache_hits_total",
			Help: "Total number of dependency cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "talentflow_cache_misses_total",
			Help: "Total number of dependency cache misses",
		},
	)
)

// RecordDependencyCall records one adapter call outcome.
func RecordDependencyCall(dependency, outcome string, durationSeconds float64) {
	DependencyCalls.WithLabelValues(dependency, outcome).Inc()
	if durationSeconds > 0 {
		DependencyLatency.WithLabelValues(dependency).Observe(durationSeconds)
	}
}

// RecordWorkflow records a finished workflow.
func RecordWorkflow(workflowType, status string, durationSeconds float64) {
	WorkflowsCompleted.WithLabelValues(workflowType, status).Inc()
	WorkflowDuration.WithLabelValues(workflowType).Observe(durationSeconds)
}
