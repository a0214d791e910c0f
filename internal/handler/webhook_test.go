package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leadflow/leadflow-backend/internal/model"
	"github.com/leadflow/leadflow-backend/internal/service"
	"github.com/leadflow/leadflow-backend/internal/store"
	"github.com/leadflow/leadflow-backend/pkg/logger"
)

type fakePipelineStore struct {
	configs map[string]*model.StoreConfig
	logs    []*model.InteractionLog
}

func (f *fakePipelineStore) GetStoreConfigByPhoneID(ctx context.Context, phoneID string) (*model.StoreConfig, error) {
	if cfg, ok := f.configs[phoneID]; ok {
		return cfg, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakePipelineStore) CreateInteractionLog(ctx context.Context, log *model.InteractionLog) error {
	f.logs = append(f.logs, log)
	return nil
}

type fakeSender struct {
	sent []string
}

func (f *fakeSender) SendInteractive(ctx context.Context, to, body, phoneNumberID string) error {
	f.sent = append(f.sent, body)
	return nil
}

func (f *fakeSender) MarkAsRead(ctx context.Context, messageID, phoneNumberID string) error {
	return nil
}

func newTestWebhookHandler(st *fakePipelineStore, sender *fakeSender) *WebhookHandler {
	log := logger.NewNop()
	pipeline := service.NewPipeline(
		st,
		service.NewClassifier(nil, log),
		service.NewTemplateResolver(nil, log),
		sender,
		nil,
		nil,
		log,
	)
	return NewWebhookHandler(pipeline, "verify-token", log)
}

func TestVerifyHandshake(t *testing.T) {
	h := newTestWebhookHandler(&fakePipelineStore{}, &fakeSender{})

	req := httptest.NewRequest(http.MethodGet,
		"/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=verify-token&hub.challenge=challenge-123", nil)
	rec := httptest.NewRecorder()

	h.Verify(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Body.String(); got != "challenge-123" {
		t.Errorf("body = %q, want the raw challenge", got)
	}
}

func TestVerifyHandshakeRejections(t *testing.T) {
	h := newTestWebhookHandler(&fakePipelineStore{}, &fakeSender{})

	urls := []string{
		"/webhooks/whatsapp?hub.mode=unsubscribe&hub.verify_token=verify-token&hub.challenge=c",
		"/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=c",
		"/webhooks/whatsapp?hub.mode=subscribe&hub.challenge=c",
		"/webhooks/whatsapp",
	}
	for _, url := range urls {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()

		h.Verify(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("%s: status = %d, want %d", url, rec.Code, http.StatusForbidden)
		}
	}
}

func TestReceiveProcessesAndAcknowledges(t *testing.T) {
	st := &fakePipelineStore{configs: map[string]*model.StoreConfig{
		"15550001111": {ID: "cfg-1", UserID: "user-1", DefaultPrice: "R$ 99,90"},
	}}
	sender := &fakeSender{}
	h := newTestWebhookHandler(st, sender)

	body := `{
		"object": "whatsapp_business_account",
		"entry": [{
			"changes": [{
				"value": {
					"messaging_product": "whatsapp",
					"metadata": {"phone_number_id": "15550001111"},
					"messages": [{
						"from": "5511999990000",
						"id": "wamid.1",
						"type": "text",
						"text": {"body": "qual o preço?"}
					}]
				}
			}]
		}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Receive(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp["success"] {
		t.Errorf("response = %v, want success true", resp)
	}

	if len(st.logs) != 1 {
		t.Errorf("interaction logs = %d, want 1", len(st.logs))
	}
	if len(sender.sent) != 1 {
		t.Errorf("sent messages = %d, want 1", len(sender.sent))
	}
}

func TestReceiveMalformedPayload(t *testing.T) {
	h := newTestWebhookHandler(&fakePipelineStore{}, &fakeSender{})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	h.Receive(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestReceiveAcknowledgesUnknownPhoneID(t *testing.T) {
	st := &fakePipelineStore{configs: map[string]*model.StoreConfig{}}
	sender := &fakeSender{}
	h := newTestWebhookHandler(st, sender)

	body := `{"entry":[{"changes":[{"value":{"messaging_product":"whatsapp","metadata":{"phone_number_id":"000"},"messages":[{"from":"5511999990000","id":"wamid.1","type":"text","text":{"body":"oi"}}]}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Receive(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d even without a store config", rec.Code, http.StatusOK)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent messages = %d, want 0", len(sender.sent))
	}
}
