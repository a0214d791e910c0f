package handler

import (
	"net/http"
	"time"

	"github.com/leadflow/leadflow-backend/internal/cache"
	"github.com/leadflow/leadflow-backend/internal/store"
)

// HealthHandler reports external-cache and relational-store connectivity and
// in-process fallback sizes. Read-only, no side effects.
type HealthHandler struct {
	redis         *cache.Redis
	store         *store.Store
	rateLimiter   *cache.Failover
	debouncer     *cache.Failover
	configSummary map[string]any
	startedAt     time.Time
}

// NewHealthHandler creates a health handler. redis may be nil when the
// external cache is not configured.
func NewHealthHandler(
	redis *cache.Redis,
	st *store.Store,
	rateLimiter, debouncer *cache.Failover,
	configSummary map[string]any,
) *HealthHandler {
	return &HealthHandler{
		redis:         redis,
		store:         st,
		rateLimiter:   rateLimiter,
		debouncer:     debouncer,
		configSummary: configSummary,
		startedAt:     time.Now(),
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	redisStatus := "disconnected"
	if h.redis != nil && h.redis.Ping(ctx) == nil {
		redisStatus = "connected"
	}

	dbStatus := "disconnected"
	dbOK := h.store != nil && h.store.Ping(ctx) == nil
	if dbOK {
		dbStatus = "connected"
	}

	status := "healthy"
	code := http.StatusOK
	if !dbOK || redisStatus != "connected" {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"uptime":    time.Since(h.startedAt).Seconds(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": map[string]string{
			"redis":    redisStatus,
			"database": dbStatus,
		},
	})
}

// Stats handles GET /health/stats
func (h *HealthHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).Seconds(),
		"fallback": map[string]int{
			"rate_limit": h.rateLimiter.FallbackLen(),
			"debounce":   h.debouncer.FallbackLen(),
		},
		"config": h.configSummary,
	})
}
