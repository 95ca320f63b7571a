package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-habit-board/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-habit-board/internal/config"
	"github.com/comitanigiacomo/kanso-habit-board/internal/core/domain"
)

// Backend bundles the selected storage with the connections behind it.
type Backend struct {
	Name    string
	Storage domain.Storage
	DB      *sqlx.DB
	Redis   *redis.Client
}

// NewBackend wires the storage named by cfg.StorageBackend.
func NewBackend(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Backend, error) {
	b := &Backend{Name: cfg.StorageBackend}

	if cfg.NeedsRedis() {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		b.Redis = rdb
	}

	switch cfg.StorageBackend {
	case config.BackendMemory:
		b.Storage = NewMemoryStore(cfg.StorageKey)

	case config.BackendFile:
		fs, err := NewFileStore(cfg.DataDir, cfg.StorageKey)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Storage = fs

	case config.BackendRedis:
		b.Storage = cache.NewRedisStore(b.Redis, cfg.StorageKey)

	case config.BackendPostgres:
		db, err := ConnectPostgres(ctx, cfg.DBDriver, cfg.PostgresDSN())
		if err != nil {
			b.Close()
			return nil, err
		}
		b.DB = db

		pg := NewPostgresStore(db, cfg.StorageKey)
		if err := pg.EnsureSchema(ctx); err != nil {
			b.Close()
			return nil, err
		}
		b.Storage = pg
		if cfg.RedisCache {
			b.Name = "postgres+redis"
			b.Storage = NewCachedStore(pg, b.Redis, cfg.StorageKey, DefaultCacheTTL, log)
		}

	default:
		b.Close()
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	log.WithField("backend", b.Name).Info("storage ready")
	return b, nil
}

// Ping checks every connection the backend holds.
func (b *Backend) Ping(ctx context.Context) error {
	var errs []error
	if b.DB != nil {
		if err := b.DB.PingContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	if b.Redis != nil {
		if err := b.Redis.Ping(ctx).Err(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (b *Backend) Close() error {
	var errs []error
	if b.DB != nil {
		errs = append(errs, b.DB.Close())
	}
	if b.Redis != nil {
		errs = append(errs, b.Redis.Close())
	}
	return errors.Join(errs...)
}
