package adapter

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/talentflow/orchestrator/internal/metrics"
)

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case stateClosed:
		return "closed"
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// breaker is a per-dependency circuit breaker. Only the aggressive strategy
// consults it before calling; every strategy feeds it outcomes.
type breaker struct {
	mu               sync.Mutex
	name             string
	state            breakerState
	failures         int
	failureThreshold int
	openTimeout      time.Duration
	openedAt         time.Time
	logger           *zap.Logger
}

func newBreaker(name string, threshold int, openTimeout time.Duration, logger *zap.Logger) *breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}
	return &breaker{
		name:             name,
		failureThreshold: threshold,
		openTimeout:      openTimeout,
		logger:           logger,
	}
}

// allow reports whether a call may proceed, moving an expired open state to
// half-open.
func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateOpen:
		if time.Since(b.openedAt) >= b.openTimeout {
			b.setState(stateHalfOpen)
			return true
		}
		return false
	default:
		return true
	}
}

func (b *breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state != stateClosed {
		b.setState(stateClosed)
	}
}

func (b *breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	switch b.state {
	case stateClosed:
		if b.failures >= b.failureThreshold {
			b.openedAt = time.Now()
			b.setState(stateOpen)
			metrics.CircuitBreakerOpens.WithLabelValues(b.name).Inc()
		}
	case stateHalfOpen:
		b.openedAt = time.Now()
		b.setState(stateOpen)
	}
}

// setState must be called with the lock held.
func (b *breaker) setState(next breakerState) {
	prev := b.state
	b.state = next
	b.logger.Info("Circuit breaker state changed",
		zap.String("dependency", b.name),
		zap.String("from", prev.String()),
		zap.String("to", next.String()),
	)
}
