package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-habit-board/internal/core/domain"
)

var _ domain.Storage = (*CachedStore)(nil)

const DefaultCacheTTL = 30 * time.Minute

// CachedStore serves reads from Redis and falls through to next on a miss.
// Cache failures never fail the operation.
type CachedStore struct {
	next  domain.Storage
	cache *redis.Client
	key   string
	ttl   time.Duration
	log   logrus.FieldLogger
}

func NewCachedStore(next domain.Storage, cache *redis.Client, key string, ttl time.Duration, log logrus.FieldLogger) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedStore{
		next:  next,
		cache: cache,
		key:   key,
		ttl:   ttl,
		log:   log.WithField("component", "cached_store"),
	}
}

func (r *CachedStore) cacheKey() string {
	return "cache:" + r.key
}

func (r *CachedStore) invalidate(ctx context.Context) {
	if err := r.cache.Del(ctx, r.cacheKey()).Err(); err != nil {
		r.log.WithError(err).Warn("failed to invalidate cache")
	}
}

func (r *CachedStore) Read(ctx context.Context) ([]byte, bool, error) {
	val, err := r.cache.Get(ctx, r.cacheKey()).Bytes()
	if err == nil {
		return val, true, nil
	}
	if !errors.Is(err, redis.Nil) {
		r.log.WithError(err).Warn("redis read error, falling back")
	}

	data, ok, err := r.next.Read(ctx)
	if err != nil || !ok {
		return data, ok, err
	}

	if setErr := r.cache.Set(ctx, r.cacheKey(), data, r.ttl).Err(); setErr != nil {
		r.log.WithError(setErr).Warn("redis set error")
	}
	return data, true, nil
}

func (r *CachedStore) Write(ctx context.Context, data []byte) error {
	if err := r.next.Write(ctx, data); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}
