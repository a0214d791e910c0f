// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// WebhookEventsTotal tracks inbound webhook deliveries by outcome.
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Inbound webhook deliveries by outcome",
		},
		[]string{"outcome"},
	)

	// MessagesProcessedTotal tracks processed messages by assigned category.
	MessagesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_processed_total",
			Help: "Messages run through the classification pipeline",
		},
		[]string{"category"},
	)

	// RateLimitRejectionsTotal tracks per-sender rate limit rejections.
	RateLimitRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Webhook deliveries rejected by the per-sender rate limiter",
		},
	)

	// DebounceSuppressedTotal tracks duplicate messages suppressed.
	DebounceSuppressedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "debounce_suppressed_total",
			Help: "Duplicate messages suppressed by the debouncer",
		},
	)

	// CacheFallbacksTotal tracks failovers to the in-process cache.
	CacheFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_fallbacks_total",
			Help: "Cache operations served by the in-process fallback",
		},
		[]string{"op"},
	)

	// SendFailuresTotal tracks outbound WhatsApp send failures.
	SendFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "whatsapp_send_failures_total",
			Help: "Outbound WhatsApp message send failures",
		},
	)

	// LeadsCreatedTotal tracks qualified leads created from button clicks.
	LeadsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Qualified leads created from buy-button clicks",
		},
	)

	// LeadTransitionsTotal tracks lead funnel transitions by target status.
	LeadTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_transitions_total",
			Help: "Lead funnel transitions by target status",
		},
		[]string{"status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordMessage records a processed message with its assigned category.
func RecordMessage(category string) {
	if category == "" {
		category = "none"
	}
	MessagesProcessedTotal.WithLabelValues(category).Inc()
}
