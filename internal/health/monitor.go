// Package health tracks per-dependency status and error rate. The monitor is
// diagnostic only: it never gates whether a dependency call is attempted.
package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status represents the health of a single dependency.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// ServiceHealth is the tracked record for one dependency.
type ServiceHealth struct {
	Name           string    `json:"name"`
	Status         Status    `json:"status"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	ErrorRate      float64   `json:"error_rate"`
	LastCheck      time.Time `json:"last_check"`
}

// Probe is a cheap reachability check run by the background prober.
type Probe func(ctx context.Context) error

// Monitor maintains one ServiceHealth record per dependency name. Records are
// updated by every adapter call and refreshed by a background timer
// independent of any in-flight workflow.
type Monitor struct {
	mu       sync.RWMutex
	services map[string]*ServiceHealth
	probes   map[string]Probe

	interval time.Duration
	timeout  time.Duration
	started  bool
	stopCh   chan struct{}
	logger   *zap.Logger
}

// NewMonitor creates a monitor probing at the given interval.
func NewMonitor(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		services: make(map[string]*ServiceHealth),
		probes:   make(map[string]Probe),
		interval: interval,
		timeout:  5 * time.Second,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

// Register creates the record for a dependency. The probe may be nil for
// dependencies that are purely in-process.
func (m *Monitor) Register(name string, probe Probe) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.services[name]; !exists {
		m.services[name] = &ServiceHealth{Name: name, Status: StatusUnknown}
	}
	if probe != nil {
		m.probes[name] = probe
	}
	m.logger.Debug("Dependency registered for health tracking", zap.String("dependency", name))
}

// RecordSuccess folds a successful call into the record.
func (m *Monitor) RecordSuccess(name string, responseTime time.Duration) {
	m.record(name, responseTime, 0, StatusHealthy)
}

// RecordFailure folds a failed or timed-out call into the record.
func (m *Monitor) RecordFailure(name string, responseTime time.Duration) {
	m.record(name, responseTime, 1, StatusDegraded)
}

// record performs the read-modify-write of the running error average under
// the lock; concurrent workflows update the same keys.
func (m *Monitor) record(name string, responseTime time.Duration, outcome float64, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sh, ok := m.services[name]
	if !ok {
		sh = &ServiceHealth{Name: name}
		m.services[name] = sh
	}
	sh.ErrorRate = (sh.ErrorRate + outcome) / 2
	sh.ResponseTimeMs = responseTime.Milliseconds()
	sh.Status = status
	sh.LastCheck = time.Now()
}

// Get returns a copy of the record for name.
func (m *Monitor) Get(name string) (ServiceHealth, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sh, ok := m.services[name]
	if !ok {
		return ServiceHealth{}, false
	}
	return *sh, true
}

// Snapshot returns copies of all records, sorted by name.
func (m *Monitor) Snapshot() []ServiceHealth {
	m.mu.RLock()
	out := make([]ServiceHealth, 0, len(m.services))
	for _, sh := range m.services {
		out = append(out, *sh)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Start begins background probing. Safe to call once.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	go m.loop()
	m.logger.Info("Health monitor started", zap.Duration("interval", m.interval))
}

// Stop halts background probing.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return
	}
	close(m.stopCh)
	m.started = false
	m.logger.Info("Health monitor stopped")
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.runProbes()
		}
	}
}

func (m *Monitor) runProbes() {
	m.mu.RLock()
	probes := make(map[string]Probe, len(m.probes))
	for name, p := range m.probes {
		probes[name] = p
	}
	m.mu.RUnlock()

	for name, probe := range probes {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		start := time.Now()
		err := probe(ctx)
		cancel()

		m.mu.Lock()
		sh, ok := m.services[name]
		if !ok {
			sh = &ServiceHealth{Name: name}
			m.services[name] = sh
		}
		sh.LastCheck = time.Now()
		sh.ResponseTimeMs = time.Since(start).Milliseconds()
		switch {
		case err != nil:
			sh.Status = StatusUnhealthy
		case sh.ErrorRate > 0.5:
			sh.Status = StatusDegraded
		default:
			sh.Status = StatusHealthy
		}
		m.mu.Unlock()

		if err != nil {
			m.logger.Warn("Dependency probe failed",
				zap.String("dependency", name),
				zap.Error(err),
			)
		}
	}
}
