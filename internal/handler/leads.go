package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/leadflow/leadflow-backend/internal/middleware"
	"github.com/leadflow/leadflow-backend/internal/service"
	"github.com/leadflow/leadflow-backend/internal/store"
	"github.com/leadflow/leadflow-backend/pkg/logger"
)

// LeadHandler exposes the dashboard's lead queue: listing and the funnel
// transitions staff perform.
type LeadHandler struct {
	leads  *service.LeadService
	store  *store.Store
	logger *logger.Logger
}

// NewLeadHandler creates a lead handler.
func NewLeadHandler(leads *service.LeadService, st *store.Store, log *logger.Logger) *LeadHandler {
	return &LeadHandler{leads: leads, store: st, logger: log}
}

// List handles GET /api/v1/leads
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	leads, err := h.store.ListLeads(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list leads", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list leads")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"leads": leads})
}

// Assume handles POST /api/v1/leads/{id}/assume
func (h *LeadHandler) Assume(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	leadID := chi.URLParam(r, "id")

	lead, err := h.leads.Assume(r.Context(), userID, leadID)
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

// Sold handles POST /api/v1/leads/{id}/sold
func (h *LeadHandler) Sold(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	leadID := chi.URLParam(r, "id")

	lead, err := h.leads.MarkSold(r.Context(), userID, leadID)
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

// Logs handles GET /api/v1/logs
func (h *LeadHandler) Logs(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	logs, err := h.store.ListInteractionLogs(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("failed to list interaction logs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list logs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

func (h *LeadHandler) writeTransitionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "lead not found")
	case errors.Is(err, service.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid lead status transition")
	default:
		h.logger.Error("lead transition failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "lead transition failed")
	}
}
