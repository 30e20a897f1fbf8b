// Package app wires configuration, connections, repositories and use cases
// shared by the api and worker commands.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/aura-service/internal/adapter/colly_fetcher"
	"github.com/user/aura-service/internal/adapter/postgres"
	redis_adapter "github.com/user/aura-service/internal/adapter/redis"
	"github.com/user/aura-service/internal/usecase"
	"github.com/user/aura-service/pkg/config"
	"github.com/user/aura-service/pkg/logger"
	"github.com/user/aura-service/pkg/metrics"
)

// App holds the long-lived dependencies of a process.
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	Pool        *pgxpool.Pool
	Redis       *redis.Client
	Frontier    usecase.Frontier
	Crawler     usecase.Crawler
	Coordinator usecase.Coordinator
}

// New loads configuration from cfgPath (empty for env and .env only),
// connects to Postgres and Redis, and builds the use cases.
func New(ctx context.Context, cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Logger initialized", zap.String("level", cfg.LogLevel))

	metrics.Init()

	pool, err := postgres.NewPool(ctx, cfg.PostgresDSN())
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	log.Info("PostgreSQL connection pool established")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		pool.Close()
		_ = log.Sync()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	log.Info("Redis connection established", zap.String("addr", cfg.RedisAddr))

	queueRepo := redis_adapter.NewQueueRepo(rdb, cfg.QueueKey, cfg.DequeuePoll)
	dedupRepo := redis_adapter.NewDedupRepo(rdb)
	processedRepo := redis_adapter.NewProcessedRepo(rdb, cfg.ProcessedSetKey)
	auraRepo := postgres.NewAuraRepo(pool)
	domainAuraRepo := postgres.NewDomainAuraRepo(pool)
	fetcher, err := colly_fetcher.NewCollyFetcher(colly_fetcher.Config{
		UserAgent:    cfg.UserAgent,
		Timeout:      cfg.FetchTimeout,
		MaxRedirects: cfg.MaxRedirects,
		Proxies:      cfg.ProxyURLs,
	})
	if err != nil {
		_ = rdb.Close()
		pool.Close()
		return nil, err
	}

	frontier := usecase.NewFrontier(queueRepo, dedupRepo, processedRepo, cfg.DedupTTL, log)
	aggregator := usecase.NewAggregator(domainAuraRepo, log)

	return &App{
		Config:      cfg,
		Logger:      log,
		Pool:        pool,
		Redis:       rdb,
		Frontier:    frontier,
		Crawler:     usecase.NewCrawlerUseCase(frontier, fetcher, auraRepo, aggregator, cfg.ErrorBackoff, log),
		Coordinator: usecase.NewCoordinator(frontier, auraRepo, cfg.RevalidateAfter, log),
	}, nil
}

// EnsureSchema applies the embedded table definitions.
func (a *App) EnsureSchema(ctx context.Context) error {
	return postgres.EnsureSchema(ctx, a.Pool)
}

// Close releases connections and flushes the logger.
func (a *App) Close() {
	if err := a.Redis.Close(); err != nil {
		a.Logger.Warn("Failed to close Redis client", zap.Error(err))
	}
	a.Pool.Close()
	_ = a.Logger.Sync()
}
