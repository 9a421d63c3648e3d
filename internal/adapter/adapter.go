// Package adapter wraps every dependency call in a deadline race with a
// configurable fallback policy. A dependency failure never aborts the
// workflow on its own: unless the strategy is conservative, the adapter
// substitutes a deterministic, dependency-specific fallback value and lets
// aggregation proceed.
package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/talentflow/orchestrator/internal/cache"
	"github.com/talentflow/orchestrator/internal/health"
	"github.com/talentflow/orchestrator/internal/metrics"
)

// Strategy governs what happens when a wrapped call fails or times out.
type Strategy string

const (
	// StrategyGraceful substitutes a fallback value on failure.
	StrategyGraceful Strategy = "graceful"
	// StrategyAggressive substitutes a fallback and additionally short-circuits
	// straight to it while the dependency's circuit breaker is open.
	StrategyAggressive Strategy = "aggressive"
	// StrategyConservative propagates the failure to the caller.
	StrategyConservative Strategy = "conservative"
)

// ParseStrategy validates a strategy string.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyGraceful, StrategyAggressive, StrategyConservative:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown fallback strategy %q", s)
	}
}

var (
	// ErrDependencyTimeout marks a call that exceeded its deadline.
	ErrDependencyTimeout = errors.New("dependency call timed out")
	// ErrCircuitOpen marks a call short-circuited by an open breaker.
	ErrCircuitOpen = errors.New("dependency circuit breaker open")
)

// CallFunc is one dependency invocation.
type CallFunc func(ctx context.Context) (any, error)

// Spec carries the per-dependency pieces the adapter needs: a total fallback
// constructor and a decoder for cached bytes.
type Spec struct {
	Fallback func() any
	Decode   func(data []byte) (any, error)
}

// Options parameterize one call.
type Options struct {
	Timeout  time.Duration
	Strategy Strategy
	// CacheTTL enables result caching when positive.
	CacheTTL time.Duration
}

// Outcome is the settled result of one wrapped call.
type Outcome struct {
	Value     any
	Err       error
	FellBack  bool
	FromCache bool
	Duration  time.Duration
}

// Adapter executes dependency calls with deadline races, fallback
// substitution, health recording, result caching, and per-dependency circuit
// breaking.
type Adapter struct {
	health    *health.Monitor
	store     cache.Store
	collector *metrics.Collector
	logger    *zap.Logger

	mu       sync.Mutex
	specs    map[string]Spec
	breakers map[string]*breaker

	breakerThreshold int
	breakerTimeout   time.Duration
}

// New creates an adapter. The cache store may be nil to disable caching.
func New(monitor *health.Monitor, store cache.Store, collector *metrics.Collector, logger *zap.Logger) *Adapter {
	return &Adapter{
		health:           monitor,
		store:            store,
		collector:        collector,
		logger:           logger,
		specs:            make(map[string]Spec),
		breakers:         make(map[string]*breaker),
		breakerThreshold: 5,
		breakerTimeout:   30 * time.Second,
	}
}

// RegisterSpec installs the fallback and cache decoder for a dependency.
func (a *Adapter) RegisterSpec(name string, spec Spec) {
	a.mu.Lock()
	a.specs[name] = spec
	a.mu.Unlock()
}

// Call races fn against the timeout. Success records healthy and returns the
// real value; failure records degraded and either substitutes the fallback
// (graceful, aggressive) or propagates (conservative).
func (a *Adapter) Call(ctx context.Context, name string, params any, fn CallFunc, opts Options) Outcome {
	key := cache.Key(name, params)

	if opts.CacheTTL > 0 && a.store != nil {
		if data, ok := a.store.Get(ctx, key); ok {
			if value, err := a.decode(name, data); err == nil {
				a.collector.RecordCacheHit()
				return Outcome{Value: value, FromCache: true}
			}
			// Undecodable entry: drop it and fall through to a live call.
			a.store.Delete(ctx, key)
		}
		a.collector.RecordCacheMiss()
	}

	br := a.breakerFor(name)
	if opts.Strategy == StrategyAggressive && !br.allow() {
		err := fmt.Errorf("%s: %w", name, ErrCircuitOpen)
		metrics.RecordDependencyCall(name, "short_circuit", 0)
		return a.fail(name, err, 0, opts)
	}

	value, duration, err := a.race(ctx, fn, opts.Timeout)
	if err != nil {
		a.health.RecordFailure(name, duration)
		br.recordFailure()
		outcome := "error"
		if errors.Is(err, ErrDependencyTimeout) {
			outcome = "timeout"
		}
		metrics.RecordDependencyCall(name, outcome, duration.Seconds())
		return a.fail(name, fmt.Errorf("%s: %w", name, err), duration, opts)
	}

	a.health.RecordSuccess(name, duration)
	br.recordSuccess()
	metrics.RecordDependencyCall(name, "success", duration.Seconds())

	if opts.CacheTTL > 0 && a.store != nil {
		if data, merr := json.Marshal(value); merr == nil {
			a.store.Set(ctx, key, data, opts.CacheTTL)
		}
	}

	return Outcome{Value: value, Duration: duration}
}

type callResult struct {
	value any
	err   error
}

// race runs fn against a deadline. The dependency goroutine is not preempted
// on timeout; it is expected to observe ctx and return on its own.
func (a *Adapter) race(ctx context.Context, fn CallFunc, timeout time.Duration) (any, time.Duration, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	done := make(chan callResult, 1)
	go func() {
		value, err := fn(callCtx)
		done <- callResult{value: value, err: err}
	}()

	select {
	case res := <-done:
		return res.value, time.Since(start), res.err
	case <-callCtx.Done():
		elapsed := time.Since(start)
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, elapsed, ErrDependencyTimeout
		}
		return nil, elapsed, callCtx.Err()
	}
}

// fail applies the fallback policy to a failed call.
func (a *Adapter) fail(name string, err error, duration time.Duration, opts Options) Outcome {
	if opts.Strategy == StrategyConservative {
		return Outcome{Err: err, Duration: duration}
	}

	metrics.FallbacksUsed.WithLabelValues(name, string(opts.Strategy)).Inc()
	a.logger.Warn("Dependency failed; substituting fallback",
		zap.String("dependency", name),
		zap.String("strategy", string(opts.Strategy)),
		zap.Error(err),
	)
	return Outcome{Value: a.fallback(name), Err: err, FellBack: true, Duration: duration}
}

// fallback is total: dependencies without a registered spec get a generic
// degraded marker.
func (a *Adapter) fallback(name string) any {
	a.mu.Lock()
	spec, ok := a.specs[name]
	a.mu.Unlock()
	if ok && spec.Fallback != nil {
		return spec.Fallback()
	}
	return map[string]any{"dependency": name, "degraded": true}
}

func (a *Adapter) decode(name string, data []byte) (any, error) {
	a.mu.Lock()
	spec, ok := a.specs[name]
	a.mu.Unlock()
	if !ok || spec.Decode == nil {
		return nil, fmt.Errorf("no cache decoder for dependency %s", name)
	}
	return spec.Decode(data)
}

func (a *Adapter) breakerFor(name string) *breaker {
	a.mu.Lock()
	defer a.mu.Unlock()
	br, ok := a.breakers[name]
	if !ok {
		br = newBreaker(name, a.breakerThreshold, a.breakerTimeout, a.logger)
		a.breakers[name] = br
	}
	return br
}
