package main

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/wayfarer/config"
	"github.com/xraph/wayfarer/store"
	"github.com/xraph/wayfarer/store/memory"
	"github.com/xraph/wayfarer/store/mongo"
	"github.com/xraph/wayfarer/store/postgres"
	"github.com/xraph/wayfarer/store/redis"
	"github.com/xraph/wayfarer/store/sqlite"
)

// openStore builds the configured store backend. The returned cleanup
// releases whatever connection the driver holds and must run after the
// store is no longer used.
func openStore(ctx context.Context, cfg *config.Store, logger *slog.Logger) (store.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.New(), func() {}, nil

	case config.DriverPostgres:
		s, err := postgres.New(ctx, cfg.Postgres.DSN, postgres.WithLogger(logger))
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		cleanup := func() {
			if err := s.Close(); err != nil {
				logger.Error("failed to close postgres store", slog.String("error", err.Error()))
			}
		}
		return s, cleanup, nil

	case config.DriverMongo:
		client, err := mongod.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongodb: %w", err)
		}
		cleanup := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error("failed to disconnect mongodb", slog.String("error", err.Error()))
			}
		}
		return mongo.New(client, cfg.Mongo.Database, mongo.WithLogger(logger)), cleanup, nil

	case config.DriverRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cleanup := func() {
			if err := client.Close(); err != nil {
				logger.Error("failed to close redis client", slog.String("error", err.Error()))
			}
		}
		return redis.New(client, redis.WithLogger(logger)), cleanup, nil

	case config.DriverSQLite:
		s, err := sqlite.New(cfg.SQLite.Path, sqlite.WithLogger(logger))
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		cleanup := func() {
			if err := s.Close(); err != nil {
				logger.Error("failed to close sqlite store", slog.String("error", err.Error()))
			}
		}
		return s, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
