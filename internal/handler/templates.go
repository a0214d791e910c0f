package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/leadflow/leadflow-backend/internal/llm"
	"github.com/leadflow/leadflow-backend/internal/middleware"
	"github.com/leadflow/leadflow-backend/internal/store"
	"github.com/leadflow/leadflow-backend/pkg/logger"
)

// TemplateHandler backs AI-assisted template generation for the dashboard.
type TemplateHandler struct {
	llmClient llm.Client
	store     *store.Store
	logger    *logger.Logger
}

// NewTemplateHandler creates a template handler. llmClient may be nil when
// no provider is configured.
func NewTemplateHandler(llmClient llm.Client, st *store.Store, log *logger.Logger) *TemplateHandler {
	return &TemplateHandler{llmClient: llmClient, store: st, logger: log}
}

type generateRequest struct {
	URL string `json:"url"`
}

// Generate handles POST /api/v1/templates/generate. The LLM returns
// structured template+keyword data per category, which is persisted for the
// authenticated account.
func (h *TemplateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if h.llmClient == nil {
		writeError(w, http.StatusServiceUnavailable, "template generation is not configured")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	userID := middleware.GetUserID(r.Context())

	drafts, err := h.llmClient.GenerateTemplates(r.Context(), req.URL)
	if err != nil {
		h.logger.Error("template generation failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "template generation failed")
		return
	}

	for _, draft := range drafts {
		if err := h.store.UpsertTemplate(r.Context(), userID, draft.Category, draft.ResponseText); err != nil {
			h.logger.Error("failed to save generated template",
				zap.String("category", draft.Category),
				zap.Error(err),
			)
			continue
		}
		if len(draft.Keywords) > 0 {
			if err := h.store.UpsertKeywordDictionary(r.Context(), userID, draft.Category, draft.Keywords); err != nil {
				h.logger.Error("failed to save generated keywords",
					zap.String("category", draft.Category),
					zap.Error(err),
				)
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"templates": drafts})
}
