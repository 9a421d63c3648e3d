// Package ratecontrol bounds workflow submissions with a token bucket.
package ratecontrol

import (
	"sync"

	"golang.org/x/time/rate"
)

// SubmitLimiter admits workflow submissions at a configured per-minute rate.
// A zero rate disables limiting entirely.
type SubmitLimiter struct {
	mu      sync.Mutex
	perMin  int
	limiter *rate.Limiter
}

// NewSubmitLimiter creates a limiter admitting perMinute submissions with a
// burst of the same size.
func NewSubmitLimiter(perMinute int) *SubmitLimiter {
	l := &SubmitLimiter{}
	l.SetRate(perMinute)
	return l
}

// Allow reports whether one submission may proceed now.
func (l *SubmitLimiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.limiter == nil {
		return true
	}
	return l.limiter.Allow()
}

// SetRate replaces the admission rate. Zero or negative disables limiting.
func (l *SubmitLimiter) SetRate(perMinute int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if perMinute == l.perMin && l.limiter != nil {
		return
	}
	l.perMin = perMinute
	if perMinute <= 0 {
		l.limiter = nil
		return
	}
	l.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)
}

// Rate returns the current per-minute admission rate; zero means unlimited.
func (l *SubmitLimiter) Rate() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.perMin
}
