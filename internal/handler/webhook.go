package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/leadflow/leadflow-backend/internal/middleware"
	"github.com/leadflow/leadflow-backend/internal/service"
	"github.com/leadflow/leadflow-backend/pkg/logger"
	"github.com/leadflow/leadflow-backend/pkg/metrics"
)

// WebhookHandler handles the WhatsApp webhook endpoints.
type WebhookHandler struct {
	pipeline    *service.Pipeline
	verifyToken string
	logger      *logger.Logger
}

// NewWebhookHandler creates a webhook handler.
func NewWebhookHandler(pipeline *service.Pipeline, verifyToken string, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		pipeline:    pipeline,
		verifyToken: verifyToken,
		logger:      log,
	}
}

// Verify handles GET /webhooks/whatsapp, the platform's one-time
// subscription handshake. The challenge is echoed verbatim only when the
// mode and verify token match.
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.verifyToken {
		h.logger.Info("webhook verified with platform")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	h.logger.Warn("webhook verification failed", zap.String("mode", mode))
	writeError(w, http.StatusForbidden, "Verification failed")
}

// Receive handles POST /webhooks/whatsapp. By the time a request reaches
// here it has passed signature verification, rate limiting and debouncing.
// Processing errors are isolated per message; the platform always gets a
// success acknowledgment once processing is attempted.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	payload, r, err := middleware.EnsurePayload(r)
	if err != nil {
		h.logger.Error("failed to decode webhook payload", zap.Error(err))
		metrics.WebhookEventsTotal.WithLabelValues("malformed").Inc()
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	h.pipeline.ProcessPayload(r.Context(), payload)
	metrics.WebhookEventsTotal.WithLabelValues("processed").Inc()

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
