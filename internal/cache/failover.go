package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/leadflow/leadflow-backend/pkg/logger"
	"github.com/leadflow/leadflow-backend/pkg/metrics"
)

// Failover is a Cache that tries the shared primary and degrades to the
// in-process fallback when the primary errors, so call sites never know which
// backend served them. Availability is traded for cross-instance consistency
// while degraded.
type Failover struct {
	primary  Cache
	fallback *Memory
	logger   *logger.Logger
}

// NewFailover builds a failover cache. A nil primary always uses the fallback.
func NewFailover(primary Cache, fallback *Memory, log *logger.Logger) *Failover {
	return &Failover{
		primary:  primary,
		fallback: fallback,
		logger:   log,
	}
}

// IncrEx increments through the primary, falling back on error. The count
// and its window TTL travel in one call, so both land on the same backend.
func (f *Failover) IncrEx(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if f.primary != nil {
		count, err := f.primary.IncrEx(ctx, key, ttl)
		if err == nil {
			return count, nil
		}
		f.degrade("incr", err)
	}
	return f.fallback.IncrEx(ctx, key, ttl)
}

// Get reads through the primary, falling back on error. A primary ErrMiss is
// a valid answer, not a failure.
func (f *Failover) Get(ctx context.Context, key string) (string, error) {
	if f.primary != nil {
		val, err := f.primary.Get(ctx, key)
		if err == nil || errors.Is(err, ErrMiss) {
			return val, err
		}
		f.degrade("get", err)
	}
	return f.fallback.Get(ctx, key)
}

// SetEx writes through the primary, falling back on error.
func (f *Failover) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	if f.primary != nil {
		if err := f.primary.SetEx(ctx, key, value, ttl); err == nil {
			return nil
		} else {
			f.degrade("setex", err)
		}
	}
	return f.fallback.SetEx(ctx, key, value, ttl)
}

// FallbackLen returns the in-process map size, for diagnostics.
func (f *Failover) FallbackLen() int {
	return f.fallback.Len()
}

func (f *Failover) degrade(op string, err error) {
	metrics.CacheFallbacksTotal.WithLabelValues(op).Inc()
	f.logger.Debug("cache primary unavailable, using in-process fallback",
		zap.String("op", op),
		zap.Error(err),
	)
}
