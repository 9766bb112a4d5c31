package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"paddock-api/internal/logger"
	"paddock-api/internal/metrics"
)

const redisPrefix = "paddock:report:"

// Redis 基于 go-redis 的报表缓存；多实例部署时共享
type Redis struct {
	rc  *redis.Client
	ttl time.Duration
}

func NewRedis(rc *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rc: rc, ttl: ttl}
}

func (c *Redis) Get(ctx context.Context, k string) ([]byte, bool) {
	b, err := c.rc.Get(ctx, redisPrefix+k).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.L().Warn("report_cache_get_error", "err", err)
		}
		metrics.ReportCacheMissesTotal.WithLabelValues("redis").Inc()
		return nil, false
	}
	metrics.ReportCacheHitsTotal.WithLabelValues("redis").Inc()
	return b, true
}

func (c *Redis) Set(ctx context.Context, k string, v []byte) {
	if err := c.rc.Set(ctx, redisPrefix+k, v, c.ttl).Err(); err != nil {
		logger.L().Warn("report_cache_set_error", "err", err)
	}
}
