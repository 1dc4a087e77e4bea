package app

import (
	"context"
	"database/sql"
	"fmt"

	"authsync-service/internal/config"
	"authsync-service/internal/identity/store"
	"authsync-service/internal/logger"
	"authsync-service/internal/redis"
	"authsync-service/internal/whitelist"

	_ "github.com/lib/pq"
)

type Infra struct {
	CredStore store.Store
	Whitelist whitelist.Store
	cleanup   func() error
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	infra := &Infra{
		cleanup: func() error { return nil },
	}

	switch cfg.StoreDriver {
	case "file":
		fileStore, err := store.NewFileStore(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		infra.CredStore = fileStore
		logger.Info("file store ready", map[string]any{"path": cfg.StorePath})

	case "postgres":
		sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return nil, err
		}
		pgStore, err := store.NewPostgresStore(ctx, sqlDB)
		if err != nil {
			return nil, err
		}
		infra.CredStore = pgStore
		infra.cleanup = sqlDB.Close
		logger.Info("database ready", nil)

	default:
		return nil, fmt.Errorf("unknown store driver: %q", cfg.StoreDriver)
	}

	if cfg.RedisAddr != "" {
		redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		infra.Whitelist = whitelist.NewRedisStore(redisClient.Client)
		logger.Info("redis ready", nil)
	} else {
		infra.Whitelist = whitelist.NewMemoryStore()
		logger.Info("whitelist using in-memory store", nil)
	}

	return infra, nil
}
