// Package rate provides fixed-window request limiting, backed by Redis
// when available and by an in-process limiter otherwise.
package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// RedisLimiter counts hits per key in fixed windows (INCR + EXPIRE).
// All instances sharing the same Redis and prefix enforce one global limit.
type RedisLimiter struct {
	client *rdb.Client
	prefix string
	max    int64
	window time.Duration
}

func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		max:    int64(max),
		window: window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	winStart := time.Now().UTC().Truncate(l.window)
	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	hits, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Result{}, err
	}
	// set expiry on first hit
	if hits == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return Result{}, err
		}
	}

	remaining := l.max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{Allowed: hits <= l.max, Remaining: remaining}
	if !res.Allowed {
		ttl, err := l.client.TTL(ctx, redisKey).Result()
		if err != nil || ttl < 0 {
			ttl = l.window
		}
		res.RetryAfter = ttl
	}
	return res, nil
}
