package middleware

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/leadflow/leadflow-backend/internal/cache"
	"github.com/leadflow/leadflow-backend/pkg/logger"
	"github.com/leadflow/leadflow-backend/pkg/metrics"
)

// RateLimitConfig configures the per-sender fixed-window rate limiter.
type RateLimitConfig struct {
	Enabled     bool
	Window      time.Duration
	MaxRequests int
}

// DebounceConfig configures the duplicate-message debouncer.
type DebounceConfig struct {
	Enabled bool
	Window  time.Duration
}

// RateLimit gates webhook deliveries per sender phone number using a
// fixed-window counter in the cache. The window expiry is attached when the
// counter is created; counts past the limit are rejected with 429 and a
// retry-after hint. Deliveries without an extractable sender pass through.
func RateLimit(c cache.Cache, cfg RateLimitConfig, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			payload, r, err := EnsurePayload(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			msg := payload.FirstMessage()
			if msg == nil || msg.From == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := "rate_limit:" + msg.From
			current, err := c.IncrEx(r.Context(), key, cfg.Window)
			if err != nil {
				// Never fail the request over a gate error.
				log.Error("rate limiter error", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if current > int64(cfg.MaxRequests) {
				log.Warn("rate limit exceeded",
					zap.String("sender", msg.From),
					zap.Int64("current", current),
					zap.Int("limit", cfg.MaxRequests),
				)
				metrics.RateLimitRejectionsTotal.Inc()
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]any{
					"error":      "Too many requests",
					"retryAfter": int(cfg.Window.Seconds()),
					"current":    current,
					"limit":      cfg.MaxRequests,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Debounce suppresses reprocessing of an identical message body from the same
// sender inside the debounce window. Duplicates are acknowledged with 202 so
// the platform does not retry; anything else records a fresh fingerprint and
// proceeds.
func Debounce(c cache.Cache, cfg DebounceConfig, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			payload, r, err := EnsurePayload(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			msg := payload.FirstMessage()
			if msg == nil || msg.From == "" || msg.TextContent() == "" {
				next.ServeHTTP(w, r)
				return
			}

			fingerprint := Fingerprint(msg.TextContent())
			now := time.Now()
			key := "debounce:" + msg.From

			record, err := c.Get(r.Context(), key)
			if err == nil {
				lastTime, lastHash, ok := parseDebounceRecord(record)
				if ok {
					elapsed := now.Sub(lastTime)
					if elapsed < cfg.Window && lastHash == fingerprint {
						remaining := cfg.Window - elapsed
						log.Info("debounced duplicate message",
							zap.String("sender", msg.From),
							zap.Duration("since_last", elapsed),
						)
						metrics.DebounceSuppressedTotal.Inc()
						w.Header().Set("Content-Type", "application/json")
						w.WriteHeader(http.StatusAccepted)
						json.NewEncoder(w).Encode(map[string]any{
							"message":    "Duplicate message debounced",
							"retryAfter": int(math.Ceil(remaining.Seconds())),
						})
						return
					}
				}
			} else if err != cache.ErrMiss {
				log.Error("debounce lookup error", zap.Error(err))
			}

			value := fmt.Sprintf("%d|%s", now.UnixMilli(), fingerprint)
			if err := c.SetEx(r.Context(), key, value, cfg.Window); err != nil {
				log.Error("debounce store error", zap.Error(err))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Fingerprint derives a short comparison value from a message body: the first
// ten characters of its base64 encoding.
func Fingerprint(text string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	if len(encoded) > 10 {
		encoded = encoded[:10]
	}
	return encoded
}

func parseDebounceRecord(record string) (time.Time, string, bool) {
	parts := strings.SplitN(record, "|", 2)
	if len(parts) != 2 {
		return time.Time{}, "", false
	}
	ms, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, "", false
	}
	return time.UnixMilli(ms), parts[1], true
}
