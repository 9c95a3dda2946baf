package cli

import (
	"context"
	"io"
	"net/http"
	"time"

	"cdr.dev/slog/v3"
	"cdr.dev/slog/v3/sloggers/sloghuman"
	"github.com/coder/quartz"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/xerrors"

	"github.com/jengzang/forgeheat/internal/cache"
	"github.com/jengzang/forgeheat/internal/config"
	"github.com/jengzang/forgeheat/internal/database"
	"github.com/jengzang/forgeheat/internal/metrics"
	"github.com/jengzang/forgeheat/internal/provider"
	"github.com/jengzang/forgeheat/internal/repository"
	"github.com/jengzang/forgeheat/internal/service"
)

// app holds the long-lived dependencies shared by every command
type app struct {
	cfg           *config.Config
	logger        slog.Logger
	clock         quartz.Clock
	registry      *prometheus.Registry
	store         cache.Store
	contributions *service.ContributionService
}

func newLogger(w io.Writer, cfg *config.Config) slog.Logger {
	level, _ := cfg.Level()
	return slog.Make(sloghuman.Sink(w)).Leveled(level)
}

func newApp(ctx context.Context, cfg *config.Config, logger slog.Logger) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		clock:    quartz.NewReal(),
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(a.registry)

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.store = store

	loc, err := cfg.Location()
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	providers, err := a.providers(loc)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	aggregator := service.NewAggregationService(providers, service.AggregationOptions{
		Logger:        logger.Named("aggregator"),
		Metrics:       m,
		Timeout:       cfg.ProviderTimeout,
		MaxConcurrent: cfg.MaxConcurrentProviders,
	})
	a.contributions = service.NewContributionService(
		aggregator,
		service.NewHeatmapService(a.clock, loc),
		cache.NewAside(store, cfg.CacheTTL, logger.Named("cache"), m),
	)
	return a, nil
}

func (a *app) providers(loc *time.Location) (*provider.Registry, error) {
	httpClient := &http.Client{}
	github, err := provider.NewGitHub(provider.GitHubOptions{
		HTTPClient: httpClient,
		APIURL:     a.cfg.GitHubAPIURL,
	})
	if err != nil {
		return nil, err
	}
	return provider.NewRegistry(
		github,
		provider.NewGitLab(provider.GitLabOptions{
			HTTPClient: httpClient,
			Clock:      a.clock,
			Logger:     a.logger.Named("gitlab"),
			Location:   loc,
			MaxPages:   a.cfg.GitLabMaxPages,
		}),
		provider.NewForgeJo(provider.ForgeJoOptions{HTTPClient: httpClient}),
	), nil
}

// openStore opens the configured cache backend. An unreachable redis is not
// fatal since every cache failure falls back to a direct computation
func (a *app) openStore(ctx context.Context) (cache.Store, error) {
	logger := a.logger.Named("cache")

	switch a.cfg.CacheBackend {
	case config.BackendRedis:
		store := cache.NewRedisStore(&redis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		if err := store.Ping(ctx); err != nil {
			logger.Warn(ctx, "redis unreachable, serving uncached until it recovers",
				slog.F("addr", a.cfg.Redis.Addr), slog.Error(err))
		}
		return store, nil
	case config.BackendSQLite:
		db, err := database.Open(ctx, database.Config{Path: a.cfg.DBPath}, logger)
		if err != nil {
			return nil, xerrors.Errorf("open sqlite cache: %w", err)
		}
		return repository.NewCacheRepository(db, a.clock), nil
	case config.BackendMemory:
		store, err := cache.NewMemoryStore(a.cfg.MemoryCacheBytes)
		if err != nil {
			return nil, xerrors.Errorf("create memory cache: %w", err)
		}
		return store, nil
	default:
		return cache.NoopStore{}, nil
	}
}

// purger is implemented by stores that only drop expired entries on read
type purger interface {
	Purge(ctx context.Context) (int64, error)
}

// schedulePurge sweeps expired entries from store every interval until ctx
// is done. It reports whether store needed sweeping
func schedulePurge(ctx context.Context, clock quartz.Clock, store cache.Store, interval time.Duration, logger slog.Logger) bool {
	p, ok := store.(purger)
	if !ok {
		return false
	}
	clock.TickerFunc(ctx, interval, func() error {
		n, err := p.Purge(ctx)
		if err != nil {
			logger.Warn(ctx, "purge expired cache entries", slog.Error(err))
			return nil
		}
		if n > 0 {
			logger.Debug(ctx, "purged expired cache entries", slog.F("count", n))
		}
		return nil
	}, "cache", "purge")
	return true
}

func (a *app) Close() error {
	return a.store.Close()
}
