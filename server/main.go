package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/meikuraledutech/chatflow"
	"github.com/meikuraledutech/chatflow/api"
	"github.com/meikuraledutech/chatflow/internal/config"
	"github.com/meikuraledutech/chatflow/postgres"
	"github.com/meikuraledutech/chatflow/redis"
	"github.com/meikuraledutech/chatflow/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// run serves until the listener fails. Deferred closes run before main exits.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := cfg.Logger(os.Stderr)
	slog.SetDefault(logger)

	kv, closer, err := openStorage(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Backend, err)
	}
	defer func() {
		if err := closer.Close(); err != nil {
			logger.Warn("close storage", "backend", cfg.Backend, "error", err)
		}
	}()

	store := chatflow.NewStore(kv, chatflow.WithKey(cfg.StorageKey), chatflow.WithLogger(logger))
	app := api.New(chatflow.DefaultKinds(), store, logger)

	logger.Info("listening", "addr", cfg.Addr, "backend", cfg.Backend)
	if err := app.Listen(cfg.Addr); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// openStorage is swapped in tests.
var openStorage = openKV

type closeFunc func() error

func (f closeFunc) Close() error { return f() }

// openKV connects the configured storage backend.
func openKV(ctx context.Context, cfg *config.Config) (chatflow.KV, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect: %w", err)
		}
		kv := postgres.New(pool)
		if err := kv.CreateSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return kv, closeFunc(func() error { pool.Close(); return nil }), nil

	case config.BackendSQLite:
		kv, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv, nil

	case config.BackendRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return redis.New(client, cfg.RedisPrefix), client, nil

	default:
		return chatflow.NewMemoryKV(), closeFunc(func() error { return nil }), nil
	}
}
