package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/talentflow/orchestrator/internal/cache"
	"github.com/talentflow/orchestrator/internal/health"
	"github.com/talentflow/orchestrator/internal/metrics"
)

type testScore struct {
	Score float64 `json:"score"`
}

func newTestAdapter(t *testing.T, store cache.Store) (*Adapter, *health.Monitor) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	monitor := health.NewMonitor(time.Minute, logger)
	return New(monitor, store, metrics.NewCollector(), logger), monitor
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []string{"graceful", "aggressive", "conservative"} {
		got, err := ParseStrategy(s)
		require.NoError(t, err)
		assert.Equal(t, Strategy(s), got)
	}
	_, err := ParseStrategy("bold")
	assert.Error(t, err)
}

func TestCallSuccess(t *testing.T) {
	a, monitor := newTestAdapter(t, nil)

	out := a.Call(context.Background(), "alignment", nil,
		func(ctx context.Context) (any, error) { return testScore{Score: 82}, nil },
		Options{Timeout: time.Second, Strategy: StrategyGraceful},
	)

	require.NoError(t, out.Err)
	assert.Equal(t, testScore{Score: 82}, out.Value)
	assert.False(t, out.FellBack)
	assert.False(t, out.FromCache)

	sh, ok := monitor.Get("alignment")
	require.True(t, ok)
	assert.Equal(t, health.StatusHealthy, sh.Status)
}

func TestCallFailureGracefulSubstitutesFallback(t *testing.T) {
	a, monitor := newTestAdapter(t, nil)
	a.RegisterSpec("alignment", Spec{
		Fallback: func() any { return testScore{Score: 50} },
	})

	boom := errors.New("upstream unavailable")
	out := a.Call(context.Background(), "alignment", nil,
		func(ctx context.Context) (any, error) { return nil, boom },
		Options{Timeout: time.Second, Strategy: StrategyGraceful},
	)

	assert.True(t, out.FellBack)
	assert.Equal(t, testScore{Score: 50}, out.Value)
	require.Error(t, out.Err)
	assert.ErrorIs(t, out.Err, boom)

	sh, ok := monitor.Get("alignment")
	require.True(t, ok)
	assert.Equal(t, health.StatusDegraded, sh.Status)
	assert.Equal(t, 0.5, sh.ErrorRate)
}

func TestCallFailureConservativePropagates(t *testing.T) {
	a, _ := newTestAdapter(t, nil)

	out := a.Call(context.Background(), "assessment", nil,
		func(ctx context.Context) (any, error) { return nil, errors.New("boom") },
		Options{Timeout: time.Second, Strategy: StrategyConservative},
	)

	require.Error(t, out.Err)
	assert.False(t, out.FellBack)
	assert.Nil(t, out.Value)
}

func TestCallTimeout(t *testing.T) {
	a, _ := newTestAdapter(t, nil)
	a.RegisterSpec("skills_gap", Spec{
		Fallback: func() any { return testScore{} },
	})

	out := a.Call(context.Background(), "skills_gap", nil,
		func(ctx context.Context) (any, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return testScore{Score: 99}, nil
			}
		},
		Options{Timeout: 20 * time.Millisecond, Strategy: StrategyGraceful},
	)

	assert.True(t, out.FellBack)
	assert.ErrorIs(t, out.Err, ErrDependencyTimeout)
	assert.Equal(t, testScore{}, out.Value)
}

func TestCallUnregisteredFallbackIsTotal(t *testing.T) {
	a, _ := newTestAdapter(t, nil)

	out := a.Call(context.Background(), "mystery", nil,
		func(ctx context.Context) (any, error) { return nil, errors.New("boom") },
		Options{Timeout: time.Second, Strategy: StrategyGraceful},
	)

	assert.True(t, out.FellBack)
	assert.Equal(t, map[string]any{"dependency": "mystery", "degraded": true}, out.Value)
}

func TestCallCachesAndServesHit(t *testing.T) {
	store := cache.NewMemoryStore()
	a, _ := newTestAdapter(t, store)
	a.RegisterSpec("alignment", Spec{
		Decode: func(data []byte) (any, error) {
			var v testScore
			if err := json.Unmarshal(data, &v); err != nil {
				return nil, err
			}
			return v, nil
		},
	})

	calls := 0
	fn := func(ctx context.Context) (any, error) {
		calls++
		return testScore{Score: 75}, nil
	}
	opts := Options{Timeout: time.Second, Strategy: StrategyGraceful, CacheTTL: time.Minute}
	params := map[string]string{"candidate": "c1", "role": "r1"}

	first := a.Call(context.Background(), "alignment", params, fn, opts)
	require.NoError(t, first.Err)
	assert.False(t, first.FromCache)

	second := a.Call(context.Background(), "alignment", params, fn, opts)
	require.NoError(t, second.Err)
	assert.True(t, second.FromCache)
	assert.Equal(t, testScore{Score: 75}, second.Value)
	assert.Equal(t, 1, calls, "second call must be served from cache")

	// Different parameters miss.
	a.Call(context.Background(), "alignment", map[string]string{"candidate": "c2"}, fn, opts)
	assert.Equal(t, 2, calls)
}

func TestCallFailureNotCached(t *testing.T) {
	store := cache.NewMemoryStore()
	a, _ := newTestAdapter(t, store)
	a.RegisterSpec("alignment", Spec{
		Fallback: func() any { return testScore{Score: 50} },
		Decode: func(data []byte) (any, error) {
			var v testScore
			return v, json.Unmarshal(data, &v)
		},
	})

	opts := Options{Timeout: time.Second, Strategy: StrategyGraceful, CacheTTL: time.Minute}
	a.Call(context.Background(), "alignment", nil,
		func(ctx context.Context) (any, error) { return nil, errors.New("boom") }, opts)

	assert.Equal(t, 0, store.Len(), "fallback values must not be cached")
}

func TestAggressiveShortCircuitsOpenBreaker(t *testing.T) {
	a, _ := newTestAdapter(t, nil)
	a.RegisterSpec("cultural_fit", Spec{
		Fallback: func() any { return testScore{Score: 50} },
	})

	failing := func(ctx context.Context) (any, error) { return nil, errors.New("boom") }
	opts := Options{Timeout: time.Second, Strategy: StrategyAggressive}

	for i := 0; i < a.breakerThreshold; i++ {
		a.Call(context.Background(), "cultural_fit", nil, failing, opts)
	}

	called := false
	out := a.Call(context.Background(), "cultural_fit", nil,
		func(ctx context.Context) (any, error) {
			called = true
			return testScore{Score: 90}, nil
		}, opts)

	assert.False(t, called, "open breaker must short-circuit aggressive calls")
	assert.True(t, out.FellBack)
	assert.ErrorIs(t, out.Err, ErrCircuitOpen)
}

func TestGracefulIgnoresOpenBreaker(t *testing.T) {
	a, _ := newTestAdapter(t, nil)

	failing := func(ctx context.Context) (any, error) { return nil, errors.New("boom") }
	for i := 0; i < a.breakerThreshold; i++ {
		a.Call(context.Background(), "alignment", nil, failing,
			Options{Timeout: time.Second, Strategy: StrategyGraceful})
	}

	out := a.Call(context.Background(), "alignment", nil,
		func(ctx context.Context) (any, error) { return testScore{Score: 88}, nil },
		Options{Timeout: time.Second, Strategy: StrategyGraceful})

	require.NoError(t, out.Err)
	assert.Equal(t, testScore{Score: 88}, out.Value)
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	logger := zaptest.NewLogger(t)
	br := newBreaker("dep", 2, 10*time.Millisecond, logger)

	br.recordFailure()
	br.recordFailure()
	assert.False(t, br.allow())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, br.allow(), "expired open state moves to half-open")

	br.recordSuccess()
	assert.True(t, br.allow())

	br.recordFailure()
	assert.True(t, br.allow(), "one failure in closed state stays closed")
}
