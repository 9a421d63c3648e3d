package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Override is a partial configuration update. Nil fields keep their current
// value.
type Override struct {
	FallbackStrategy    *string                  `json:"fallback_strategy,omitempty"`
	DefaultTimeout      *time.Duration           `json:"default_timeout,omitempty"`
	DependencyTimeouts  map[string]time.Duration `json:"dependency_timeouts,omitempty"`
	CacheTTL            *time.Duration           `json:"cache_ttl,omitempty"`
	MaxConcurrentCalls  *int                     `json:"max_concurrent_calls,omitempty"`
	SubmitRatePerMinute *int                     `json:"submit_rate_per_minute,omitempty"`
}

// Manager holds the live configuration and serializes updates from the admin
// API and the file watcher.
type Manager struct {
	mu     sync.RWMutex
	cfg    *Config
	path   string
	logger *zap.Logger

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
}

// NewManager wraps an already-loaded configuration. The path is remembered
// for hot reloads and may be empty.
func NewManager(cfg *Config, path string, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:    cfg.clone(),
		path:   path,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Current returns a copy of the live configuration.
func (m *Manager) Current() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.clone()
}

// Update applies a partial override and returns the previous configuration.
// Invalid overrides are rejected without changing anything.
func (m *Manager) Update(o Override) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.cfg.clone()
	if o.FallbackStrategy != nil {
		next.FallbackStrategy = *o.FallbackStrategy
	}
	if o.DefaultTimeout != nil {
		next.DefaultTimeout = *o.DefaultTimeout
	}
	for name, d := range o.DependencyTimeouts {
		if next.DependencyTimeouts == nil {
			next.DependencyTimeouts = make(map[string]time.Duration)
		}
		next.DependencyTimeouts[name] = d
	}
	if o.CacheTTL != nil {
		next.CacheTTL = *o.CacheTTL
	}
	if o.MaxConcurrentCalls != nil {
		next.MaxConcurrentCalls = *o.MaxConcurrentCalls
	}
	if o.SubmitRatePerMinute != nil {
		next.SubmitRatePerMinute = *o.SubmitRatePerMinute
	}

	if err := next.Validate(); err != nil {
		return nil, fmt.Errorf("config update rejected: %w", err)
	}

	previous := m.cfg
	m.cfg = next
	m.logger.Info("Configuration updated",
		zap.String("fallback_strategy", next.FallbackStrategy),
		zap.Duration("default_timeout", next.DefaultTimeout),
	)
	return previous, nil
}

// Watch starts reloading the config file on changes. No-op without a path.
func (m *Manager) Watch() error {
	if m.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	if err := watcher.Add(m.path); err != nil {
		watcher.Close()
		return fmt.Errorf("config watcher: %w", err)
	}
	m.watcher = watcher

	go m.watchLoop()
	m.logger.Info("Watching configuration file", zap.String("path", m.path))
	return nil
}

// Stop halts the file watcher.
func (m *Manager) Stop() {
	close(m.stopCh)
	if m.watcher != nil {
		m.watcher.Close()
	}
}

func (m *Manager) watchLoop() {
	for {
		select {
		case <-m.stopCh:
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			m.reload()
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn("Config watcher error", zap.Error(err))
		}
	}
}

func (m *Manager) reload() {
	cfg, err := Load(m.path)
	if err != nil {
		m.logger.Warn("Config reload failed; keeping current configuration",
			zap.String("path", m.path),
			zap.Error(err),
		)
		return
	}

	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()
	m.logger.Info("Configuration reloaded", zap.String("path", m.path))
}
