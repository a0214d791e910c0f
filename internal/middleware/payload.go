package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/leadflow/leadflow-backend/internal/model"
)

const payloadKey ContextKey = "webhook_payload"

// PayloadFromContext returns the decoded webhook payload, or nil.
func PayloadFromContext(ctx context.Context) *model.WebhookPayload {
	if v := ctx.Value(payloadKey); v != nil {
		return v.(*model.WebhookPayload)
	}
	return nil
}

// EnsurePayload decodes the webhook envelope once per request, caching it in
// the request context so the gates and the handler all share one decode. The
// body is restored after reading.
func EnsurePayload(r *http.Request) (*model.WebhookPayload, *http.Request, error) {
	if p := PayloadFromContext(r.Context()); p != nil {
		return p, r, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, r, err
	}
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	var payload model.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, r, err
	}

	r = r.WithContext(context.WithValue(r.Context(), payloadKey, &payload))
	return &payload, r, nil
}
