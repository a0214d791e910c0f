package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
)

// APIRateLimit creates perimeter rate limiting for the dashboard API, keyed
// by authenticated user when present and client IP otherwise. The per-sender
// webhook limiter lives in gates.go; this one only shields the REST surface.
func APIRateLimit(requestLimit int, windowLength time.Duration) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(windowLength.Seconds()))
	return httprate.Limit(
		requestLimit,
		windowLength,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			userID := GetUserID(r.Context())
			if userID != "" {
				return "user:" + userID, nil
			}
			return "ip:" + r.RemoteAddr, nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", retryAfter)
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded","retry_after":` + retryAfter + `}`))
		}),
	)
}
