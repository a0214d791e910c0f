package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the Cache implementation backed by a shared Redis instance,
// giving counters that are correct across multiple pipeline instances.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis cache from a redis:// URL.
func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return &Redis{client: redis.NewClient(opts)}, nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// IncrEx increments the counter at key and attaches ttl when the key has
// none, in a single transactional pipeline.
func (r *Redis) IncrEx(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Get returns the value at key, mapping redis.Nil to ErrMiss.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

// SetEx stores value at key with a time-to-live.
func (r *Redis) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.SetEx(ctx, key, value, ttl).Err()
}

// Ping checks connectivity to the Redis server.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
