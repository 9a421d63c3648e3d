// Package config loads orchestrator settings from a YAML file and
// environment overrides, and keeps them hot-reloadable at runtime.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime knob of the orchestrator.
type Config struct {
	HTTPAddr string `mapstructure:"http_addr"`

	// FallbackStrategy is one of graceful, aggressive, conservative.
	FallbackStrategy string `mapstructure:"fallback_strategy"`

	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
	// DependencyTimeouts overrides DefaultTimeout per dependency name.
	DependencyTimeouts map[string]time.Duration `mapstructure:"dependency_timeouts"`

	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	RedisAddr string        `mapstructure:"redis_addr"`

	HealthCheckInterval time.Duration `mapstructure:"health_check_interval"`

	// MaxConcurrentCalls bounds one workflow's fan-out; zero means unbounded.
	MaxConcurrentCalls int `mapstructure:"max_concurrent_calls"`

	// SubmitRatePerMinute bounds workflow submissions; zero disables limiting.
	SubmitRatePerMinute int `mapstructure:"submit_rate_per_minute"`

	CompletionEndpoint string `mapstructure:"completion_endpoint"`
	TaxonomyPath       string `mapstructure:"taxonomy_path"`

	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from the given file (optional) with TALENTFLOW_*
// environment overrides on top of defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TALENTFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("fallback_strategy", "graceful")
	v.SetDefault("default_timeout", 10*time.Second)
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("health_check_interval", 30*time.Second)
	v.SetDefault("max_concurrent_calls", 0)
	v.SetDefault("submit_rate_per_minute", 0)
	v.SetDefault("completion_endpoint", "http://localhost:9090/v1/complete")
	v.SetDefault("log_level", "info")
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	switch c.FallbackStrategy {
	case "graceful", "aggressive", "conservative":
	default:
		return fmt.Errorf("invalid fallback_strategy %q", c.FallbackStrategy)
	}
	if c.DefaultTimeout <= 0 {
		return fmt.Errorf("default_timeout must be positive, got %s", c.DefaultTimeout)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative, got %s", c.CacheTTL)
	}
	if c.MaxConcurrentCalls < 0 {
		return fmt.Errorf("max_concurrent_calls must not be negative, got %d", c.MaxConcurrentCalls)
	}
	if c.SubmitRatePerMinute < 0 {
		return fmt.Errorf("submit_rate_per_minute must not be negative, got %d", c.SubmitRatePerMinute)
	}
	for name, d := range c.DependencyTimeouts {
		if d <= 0 {
			return fmt.Errorf("dependency timeout for %s must be positive, got %s", name, d)
		}
	}
	return nil
}

// TimeoutFor returns the effective timeout for a dependency.
func (c *Config) TimeoutFor(dependency string) time.Duration {
	if d, ok := c.DependencyTimeouts[dependency]; ok {
		return d
	}
	return c.DefaultTimeout
}

// clone returns a deep copy.
func (c *Config) clone() *Config {
	out := *c
	if c.DependencyTimeouts != nil {
		out.DependencyTimeouts = make(map[string]time.Duration, len(c.DependencyTimeouts))
		for k, v := range c.DependencyTimeouts {
			out.DependencyTimeouts[k] = v
		}
	}
	return &out
}
