// Package db opens the Postgres pool and Redis client backing the portal stores.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tenantportal/pkg/config"
)

const pingTimeout = 5 * time.Second

// Open connects to Postgres and pings it. An empty DSN yields a nil pool.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, nil
	}
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pcfg.MaxConnIdleTime = 5 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// OpenRedis parses a redis:// URL and pings the server. An empty URL yields nil.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	cli := redis.NewClient(opts)
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := cli.Ping(pctx).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return cli, nil
}

func MustConnect(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) *pgxpool.Pool {
	pool, err := Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalw("postgres unavailable", "err", err)
	}
	if pool != nil {
		cc := pool.Config().ConnConfig
		log.Infow("postgres ready", "host", cc.Host, "database", cc.Database)
	}
	return pool
}

func MustRedis(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) *redis.Client {
	cli, err := OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalw("redis unavailable", "err", err)
	}
	if cli != nil {
		log.Infow("redis ready", "addr", cli.Options().Addr)
	}
	return cli
}
