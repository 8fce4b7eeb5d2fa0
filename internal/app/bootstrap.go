// Package app assembles the adapters and services behind the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/artifact-search/internal/adapters/driven/ai"
	"github.com/custodia-labs/artifact-search/internal/adapters/driven/config/file"
	"github.com/custodia-labs/artifact-search/internal/adapters/driven/events/kafka"
	"github.com/custodia-labs/artifact-search/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/artifact-search/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/artifact-search/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/artifact-search/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/artifact-search/internal/adapters/driving/cli"
	"github.com/custodia-labs/artifact-search/internal/connectors"
	"github.com/custodia-labs/artifact-search/internal/core/domain"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driven"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driving"
	"github.com/custodia-labs/artifact-search/internal/core/services"
	"github.com/custodia-labs/artifact-search/internal/logger"
	"github.com/custodia-labs/artifact-search/internal/telemetry"
)

const (
	// shutdownTimeout bounds telemetry flushing on exit.
	shutdownTimeout = 5 * time.Second

	// pingTimeout bounds the reachability check of optional backends.
	pingTimeout = 2 * time.Second

	// purgeInterval is how often the in-memory cache drops expired entries.
	purgeInterval = 5 * time.Minute
)

// Bootstrap builds services for the CLI. Version is reported in telemetry.
type Bootstrap struct {
	Version string
}

// resolveDir returns configDir or the default directory.
func resolveDir(configDir string) (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	dir, err := file.DefaultDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return dir, nil
}

// LoadSettings opens the settings service without touching any backend.
func (b *Bootstrap) LoadSettings(configDir string) (driving.SettingsService, error) {
	dir, err := resolveDir(configDir)
	if err != nil {
		return nil, err
	}
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return services.NewSettingsService(store, ai.Validator{}), nil
}

// LoadServices builds the full search stack. Optional backends that fail to
// open are logged and replaced by in-process equivalents.
func (b *Bootstrap) LoadServices(ctx context.Context, configDir string) (*cli.Services, error) {
	dir, err := resolveDir(configDir)
	if err != nil {
		return nil, err
	}

	settingsSvc, err := b.LoadSettings(dir)
	if err != nil {
		return nil, err
	}
	settings, err := settingsSvc.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	var closers []func() error

	shutdown, err := telemetry.Setup(ctx, settings.Telemetry, b.Version)
	if err != nil {
		logger.Warn("Telemetry disabled: %v", err)
		shutdown = nil
	}

	cache := openCache(ctx, settings.Cache)
	closers = append(closers, cache.Close)

	llm, err := ai.CreateLLMService(ctx, &settings.AI)
	if err != nil {
		logger.Warn("AI unavailable, using keyword routing: %v", err)
		llm = nil
	}
	if llm != nil {
		closers = append(closers, llm.Close)
	}

	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		if cerr := release(closers, shutdown); cerr != nil {
			logger.Warn("Release after failed start: %v", cerr)
		}
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	engine := services.NewArtifactSearchEngine(
		connectors.NewFromSettings(settings, cache),
		services.NewRouter(llm, prompts),
		services.NewSummariser(llm, prompts),
	)
	engine.SetConnectorTimeout(settings.Search.ConnectorTimeout)
	if settings.History.Enabled {
		engine.SetHistoryStore(openHistory(ctx, settings.History, filepath.Join(dir, "data")))
	}
	if len(settings.Events.Brokers) > 0 {
		pub, err := kafka.NewPublisher(settings.Events.Brokers, settings.Events.Topic)
		if err != nil {
			logger.Warn("Search events disabled: %v", err)
		} else {
			engine.SetEventPublisher(pub)
		}
	}

	s := &cli.Services{Search: engine}

	var watchers []func(context.Context)
	watcher, err := file.NewPromptWatcher(prompts)
	if err != nil {
		logger.Debug("Prompt reloading disabled: %v", err)
	} else {
		watchers = append(watchers, watcher.Run)
		closers = append(closers, watcher.Close)
	}
	if mc, ok := cache.(*memory.Cache); ok {
		watchers = append(watchers, func(ctx context.Context) { mc.RunJanitor(ctx, purgeInterval) })
	}
	s.Watch = runAll(watchers)

	s.Close = func() error {
		return errors.Join(engine.Close(), release(closers, shutdown))
	}
	return s, nil
}

// runAll runs fns concurrently and returns once all of them have.
// It returns nil when fns is empty.
func runAll(fns []func(context.Context)) func(context.Context) {
	if len(fns) == 0 {
		return nil
	}
	return func(ctx context.Context) {
		var wg sync.WaitGroup
		for _, fn := range fns {
			wg.Add(1)
			go func() {
				defer wg.Done()
				fn(ctx)
			}()
		}
		wg.Wait()
	}
}

// release runs every closer, then flushes telemetry, and joins the errors.
func release(closers []func() error, shutdown func(context.Context) error) error {
	errs := make([]error, 0, len(closers)+1)
	for _, c := range closers {
		errs = append(errs, c())
	}
	if shutdown != nil {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		errs = append(errs, shutdown(sctx))
	}
	return errors.Join(errs...)
}

func openCache(ctx context.Context, cfg domain.CacheSettings) driven.Cache {
	if cfg.RedisAddr == "" {
		return memory.NewCache()
	}

	c := redis.NewCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := c.Ping(pctx); err != nil {
		logger.Warn("Redis cache unavailable, using memory: %v", err)
		_ = c.Close()
		return memory.NewCache()
	}
	logger.Debug("Using Redis cache at %s", cfg.RedisAddr)
	return c
}

func openHistory(ctx context.Context, cfg domain.HistorySettings, dataDir string) driven.HistoryStore {
	if cfg.DSN != "" {
		store, err := postgres.NewStore(ctx, cfg.DSN)
		if err == nil {
			return store
		}
		logger.Warn("Postgres history unavailable, using SQLite: %v", err)
	}
	store, err := sqlite.NewStore(dataDir)
	if err == nil {
		return store
	}
	logger.Warn("SQLite history unavailable, keeping history in memory: %v", err)
	return memory.NewHistoryStore(0)
}
