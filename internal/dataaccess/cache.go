package dataaccess

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"campaign-query/internal/common/config"
	"campaign-query/internal/common/logger"
)

// Cached wraps a Service with a lazy per-boundary-type reference cache backed
// by Redis. Caches are populated on first access and never invalidated within
// a process lifetime. There is deliberately no single-flight guard: concurrent
// cold-start fetches each hit the backing service, which is idempotent and
// cheap relative to request volume.
type Cached struct {
	Service

	rdb    *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewRedis creates a Redis client with the standard pool settings.
func NewRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
}

// NewCached wraps inner with a Redis reference cache. ttl of 0 caches without
// expiry.
func NewCached(inner Service, rdb *redis.Client, ttl time.Duration, log logger.Logger) *Cached {
	return &Cached{
		Service: inner,
		rdb:     rdb,
		ttl:     ttl,
		logger:  log.WithFields(map[string]interface{}{"component": "boundary-cache"}),
	}
}

func cacheKey(boundaryType BoundaryType) string {
	return "reference:" + string(boundaryType)
}

// ReferenceList serves from cache when warm, otherwise fetches and populates.
// Cache faults degrade to the backing service rather than failing the query.
func (c *Cached) ReferenceList(ctx context.Context, boundaryType BoundaryType) ([]string, error) {
	key := cacheKey(boundaryType)

	if raw, err := c.rdb.Get(ctx, key).Result(); err == nil {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err == nil {
			return out, nil
		}
		c.logger.Warn("corrupt cache entry, refetching", map[string]interface{}{"key": key})
	} else if err != redis.Nil {
		c.logger.Warn("cache read failed, falling through", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	out, err := c.Service.ReferenceList(ctx, boundaryType)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("cache write failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}

	return out, nil
}
