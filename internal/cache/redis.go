package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis backs the cache with a shared Redis instance so repeated identical
// requests are deduplicated across processes. Failures degrade to a miss;
// the cache is an optimization, never a dependency.
type Redis struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedis(logger *zap.Logger, addr, password string, db int, ttl time.Duration) *Redis {
	return &Redis{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl:    ttl,
		logger: logger,
	}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	value, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil && r.logger != nil {
			r.logger.Debug("redis cache get failed", zap.Error(err))
		}
		return "", false
	}
	return value, true
}

func (r *Redis) Set(ctx context.Context, key, value string) {
	if err := r.rdb.Set(ctx, key, value, r.ttl).Err(); err != nil && r.logger != nil {
		r.logger.Debug("redis cache set failed", zap.Error(err))
	}
}
