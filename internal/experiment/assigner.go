// Package experiment assigns subjects to weighted A/B variants. Assignment is
// a pure function of (testId, subjectId); no state is stored per subject.
package experiment

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"sync"

	"go.uber.org/zap"
)

// Variant is one experiment arm.
type Variant struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
}

// Config describes one experiment.
type Config struct {
	TestID   string    `json:"test_id"`
	Variants []Variant `json:"variants"`
}

const weightTolerance = 0.01

var (
	ErrInvalidConfig = errors.New("experiment: invalid config")
	ErrUnknownTest   = errors.New("experiment: unknown test id")
)

// Validate rejects configs with fewer than 2 variants or weights not summing
// to 1 within tolerance.
func (c Config) Validate() error {
	if c.TestID == "" {
		return fmt.Errorf("%w: empty test id", ErrInvalidConfig)
	}
	if len(c.Variants) < 2 {
		return fmt.Errorf("%w: need at least 2 variants, got %d", ErrInvalidConfig, len(c.Variants))
	}
	var sum float64
	for _, v := range c.Variants {
		if v.ID == "" {
			return fmt.Errorf("%w: variant with empty id", ErrInvalidConfig)
		}
		if v.Weight < 0 || v.Weight > 1 {
			return fmt.Errorf("%w: variant %s weight %v out of range", ErrInvalidConfig, v.ID, v.Weight)
		}
		sum += v.Weight
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: weights sum to %v, want 1±%v", ErrInvalidConfig, sum, weightTolerance)
	}
	return nil
}

// Assigner holds registered experiment configs.
type Assigner struct {
	mu      sync.RWMutex
	configs map[string]Config
	logger  *zap.Logger
}

// NewAssigner creates an assigner with no experiments.
func NewAssigner(logger *zap.Logger) *Assigner {
	return &Assigner{configs: make(map[string]Config), logger: logger}
}

// Register validates and stores an experiment config. Invalid configs are
// rejected and never stored.
func (a *Assigner) Register(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.mu.Lock()
	a.configs[cfg.TestID] = cfg
	a.mu.Unlock()
	a.logger.Info("Experiment registered",
		zap.String("test_id", cfg.TestID),
		zap.Int("variants", len(cfg.Variants)),
	)
	return nil
}

// Configs returns the registered experiments.
func (a *Assigner) Configs() []Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Config, 0, len(a.configs))
	for _, cfg := range a.configs {
		out = append(out, cfg)
	}
	return out
}

// Assign buckets subjectID into one of the test's variants. The same
// (testID, subjectID) pair always yields the same variant.
func (a *Assigner) Assign(testID, subjectID string) (Variant, error) {
	a.mu.RLock()
	cfg, ok := a.configs[testID]
	a.mu.RUnlock()
	if !ok {
		return Variant{}, fmt.Errorf("%w: %s", ErrUnknownTest, testID)
	}

	bucket := bucketOf(subjectID)
	var cumulative float64
	for _, v := range cfg.Variants {
		cumulative += v.Weight
		if bucket <= cumulative {
			return v, nil
		}
	}
	// Weights sum to 1 within tolerance; floating error can leave the bucket
	// just past the last boundary.
	return cfg.Variants[len(cfg.Variants)-1], nil
}

// bucketOf maps a subject id onto [0,1) via a stable 32-bit hash.
func bucketOf(subjectID string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(subjectID))
	return float64(h.Sum32()) / float64(1<<32)
}
