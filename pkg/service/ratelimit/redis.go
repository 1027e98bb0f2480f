package ratelimit

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
)

const defaultKeyPrefix = "themis:submissions"

// Redis is a fixed window submission counter kept in Redis
type Redis struct {
	client    *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
}

var _ interfaces.RateLimiter = &Redis{}

type RedisOption func(*Redis)

// WithKeyPrefix sets the prefix of the per-user counter keys
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.keyPrefix = prefix
	}
}

// NewRedis connects to addr and allows limit submissions per user per window
func NewRedis(ctx context.Context, addr, password string, limit int, window time.Duration, opts ...RedisOption) (*Redis, error) {
	if limit <= 0 {
		return nil, goerr.New("rate limit must be positive", goerr.V("limit", limit))
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", addr))
	}

	r := &Redis{
		client:    client,
		limit:     limit,
		window:    window,
		keyPrefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Redis) Allow(ctx context.Context, userID string) (bool, time.Duration, error) {
	key := r.keyPrefix + ":" + userID

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, goerr.Wrap(err, "failed to increment submission counter", goerr.V("key", key))
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			return false, 0, goerr.Wrap(err, "failed to set counter expiry", goerr.V("key", key))
		}
	}

	if count > int64(r.limit) {
		ttl, err := r.client.TTL(ctx, key).Result()
		if err != nil {
			return false, 0, goerr.Wrap(err, "failed to get counter TTL", goerr.V("key", key))
		}
		return false, ttl, nil
	}
	return true, 0, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
