// Package cache provides the counter/record store used by the rate limiter
// and debouncer: a Redis-backed primary, a mutex-guarded in-process fallback,
// and a failover decorator that degrades from one to the other.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: key not found")

// Cache is the capability set the webhook gates need. IncrEx bundles the
// counter increment with its window expiry in one operation, so a count and
// its TTL can never land on different backends.
type Cache interface {
	// IncrEx atomically increments the counter at key, creating it at 1
	// with the given time-to-live. The TTL of an existing key is untouched.
	IncrEx(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Get returns the string value at key, or ErrMiss.
	Get(ctx context.Context, key string) (string, error)

	// SetEx stores value at key with a time-to-live.
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
}
