package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/talentflow/orchestrator/internal/adapter"
	"github.com/talentflow/orchestrator/internal/aggregate"
	"github.com/talentflow/orchestrator/internal/cache"
	"github.com/talentflow/orchestrator/internal/config"
	"github.com/talentflow/orchestrator/internal/ensemble"
	"github.com/talentflow/orchestrator/internal/experiment"
	"github.com/talentflow/orchestrator/internal/health"
	"github.com/talentflow/orchestrator/internal/httpapi"
	"github.com/talentflow/orchestrator/internal/metrics"
	"github.com/talentflow/orchestrator/internal/profiles"
	"github.com/talentflow/orchestrator/internal/scoring"
	"github.com/talentflow/orchestrator/internal/semantic"
	"github.com/talentflow/orchestrator/internal/workflow"
)

func main() {
	cfgPath := os.Getenv("TALENTFLOW_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	manager := config.NewManager(cfg, cfgPath, logger)
	if err := manager.Watch(); err != nil {
		logger.Warn("Config hot reload disabled", zap.Error(err))
	}
	defer manager.Stop()

	// Cache: Redis when configured and reachable, in-memory otherwise.
	var store cache.Store = cache.NewMemoryStore()
	if cfg.RedisAddr != "" {
		redisStore, err := cache.NewRedisStore(cfg.RedisAddr, logger)
		if err != nil {
			logger.Warn("Redis unreachable; using in-memory cache",
				zap.String("addr", cfg.RedisAddr),
				zap.Error(err),
			)
		} else {
			store = redisStore
			defer redisStore.Close()
		}
	}

	provider := loadProvider(logger)

	monitor := health.NewMonitor(cfg.HealthCheckInterval, logger)
	monitor.Start()
	defer monitor.Stop()

	collector := metrics.NewCollector()

	matcher := semantic.NewMatcher(logger)
	if cfg.TaxonomyPath != "" {
		if err := matcher.LoadTaxonomy(cfg.TaxonomyPath); err != nil {
			logger.Warn("Taxonomy load failed; using built-in taxonomy",
				zap.String("path", cfg.TaxonomyPath),
				zap.Error(err),
			)
		}
	}

	completion := scoring.NewHTTPClient(cfg.CompletionEndpoint, logger)

	engine := workflow.NewEngine(workflow.Deps{
		Provider:        provider,
		Adapter:         adapter.New(monitor, store, collector, logger),
		Matcher:         matcher,
		Predictor:       ensemble.NewPredictor(logger),
		Assessor:        scoring.NewAssessor(logger),
		Scorer:          scoring.NewScorer(completion, logger),
		Assigner:        experiment.NewAssigner(logger),
		Aggregate:       aggregate.NewAggregator(logger),
		Monitor:         monitor,
		Store:           store,
		Config:          manager,
		Collector:       collector,
		Logger:          logger,
		CompletionProbe: completion.Ping,
	})

	server := httpapi.NewServer(engine, manager, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.HTTPAddr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown incomplete", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

// loadProvider reads the profiles seed file when configured, else starts with
// an empty in-memory provider.
func loadProvider(logger *zap.Logger) *profiles.StaticProvider {
	path := os.Getenv("TALENTFLOW_PROFILES")
	if path == "" {
		logger.Info("No profiles seed configured; starting with an empty provider")
		return profiles.NewStaticProvider()
	}
	p, err := profiles.LoadStatic(path)
	if err != nil {
		logger.Warn("Profiles seed load failed; starting empty",
			zap.String("path", path),
			zap.Error(err),
		)
		return profiles.NewStaticProvider()
	}
	logger.Info("Profiles seed loaded", zap.String("path", path))
	return p
}
