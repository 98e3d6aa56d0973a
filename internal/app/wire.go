package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/linkcard/internal/adapter/chromedp_fetcher"
	"github.com/user/linkcard/internal/adapter/httpfetch"
	"github.com/user/linkcard/internal/adapter/jsonfile"
	pgadapter "github.com/user/linkcard/internal/adapter/postgres"
	redisadapter "github.com/user/linkcard/internal/adapter/redis"
	"github.com/user/linkcard/internal/delivery/http/handler"
	"github.com/user/linkcard/internal/entity"
	"github.com/user/linkcard/internal/extractor"
	"github.com/user/linkcard/internal/fetcher"
	"github.com/user/linkcard/internal/markdown"
	"github.com/user/linkcard/internal/monitoring"
	"github.com/user/linkcard/internal/proxy"
	"github.com/user/linkcard/internal/render"
	"github.com/user/linkcard/internal/repository"
	"github.com/user/linkcard/internal/usecase"
	"github.com/user/linkcard/pkg/config"
)

// App holds every long-lived component built from a Config.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Registry  *prometheus.Registry
	Metrics   *monitoring.Metrics
	Cache     repository.MetadataCacheRepository
	Fetcher   *fetcher.Fetcher
	Resolver  usecase.MetadataResolver
	Cards     render.CardRenderer
	Converter *markdown.Converter

	// HealthChecks probes the external cache backend, if any.
	HealthChecks map[string]handler.HealthCheck

	closers []func()
}

// New wires the application. Close releases backend connections.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		Config:       cfg,
		Logger:       logger,
		Registry:     prometheus.NewRegistry(),
		HealthChecks: make(map[string]handler.HealthCheck),
	}
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Metrics = monitoring.NewMetrics(a.Registry)

	cache, err := a.newCache(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Cache = cache

	proxies := proxy.NewManager(cfg.Proxies, cfg.UserAgent)
	var transport repository.PageFetcherRepository
	switch cfg.FetchMode {
	case config.FetchModeBrowser:
		transport = chromedp_fetcher.NewChromedpFetcher(cfg.BrowserTimeout(), proxies, logger)
	default:
		transport = httpfetch.NewPageFetcher(cfg.FetchTimeout(), proxies)
	}
	a.Fetcher = fetcher.New(transport, logger, a.Metrics)

	ext := extractor.New(extractor.WithDefaultLogo(cfg.DefaultLogo))
	a.Resolver = usecase.NewMetadataResolver(a.Cache, a.Fetcher, ext, logger, a.Metrics)
	a.Cards = render.NewDefault(ext.DefaultLogo())
	a.Converter = markdown.NewConverter(markdown.New(a.Resolver,
		markdown.WithTarget(entity.Target(cfg.Target)),
		markdown.WithClassPrefix(cfg.ClassPrefix),
		markdown.WithRenderer(a.Cards),
		markdown.WithLogger(logger),
		markdown.WithMetrics(a.Metrics),
	))

	logger.Info("linkcard initialised",
		zap.String("cache_backend", cfg.CacheBackend),
		zap.String("fetch_mode", cfg.FetchMode),
	)
	return a, nil
}

func (a *App) newCache(ctx context.Context) (repository.MetadataCacheRepository, error) {
	cfg := a.Config
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.HealthChecks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
		return redisadapter.NewMetadataCacheRepo(rdb), nil

	case config.CacheBackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("unable to create connection pool: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		repo := pgadapter.NewMetadataCacheRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		a.HealthChecks["postgres"] = pool.Ping
		return repo, nil

	default:
		path := CachePath(cfg)
		a.Logger.Info("using metadata cache file", zap.String("path", path))
		return jsonfile.NewMetadataCacheRepo(path, a.Logger), nil
	}
}

// Close releases backend connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// CachePath picks the cache file location: CACHE_PATH when set, the project
// root when it exists, otherwise a linkcard directory under the user config
// directory.
func CachePath(cfg *config.Config) string {
	if cfg.CachePath != "" {
		return cfg.CachePath
	}
	if cfg.ProjectRoot != "" {
		if info, err := os.Stat(cfg.ProjectRoot); err == nil && info.IsDir() {
			return filepath.Join(cfg.ProjectRoot, jsonfile.DefaultFileName)
		}
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "linkcard", jsonfile.DefaultFileName)
}
