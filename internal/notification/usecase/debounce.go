package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-stock-service/pkg/cache"
)

// RedisDebouncer lets one alert per key through per cooldown window.
type RedisDebouncer struct {
	cache    *cache.RedisClient
	cooldown time.Duration
}

func NewRedisDebouncer(c *cache.RedisClient, cooldown time.Duration) *RedisDebouncer {
	return &RedisDebouncer{cache: c, cooldown: cooldown}
}

func (d *RedisDebouncer) Allow(ctx context.Context, key string) (bool, error) {
	if d.cooldown <= 0 {
		return true, nil
	}
	return d.cache.AcquireLock(ctx, key, time.Now().UTC().Format(time.RFC3339), d.cooldown)
}
