// Package whatsapp provides the outbound Meta Graph API client used to send
// replies and mark inbound messages as read.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/leadflow/leadflow-backend/pkg/logger"
)

// BuyButtonTitle is the label on the call-to-action reply button.
const BuyButtonTitle = "Quero comprar! 🛒"

// Config holds the Graph API client settings.
type Config struct {
	BaseURL     string
	APIVersion  string
	AccessToken string
	Timeout     time.Duration
}

// Client sends messages through the Graph API per-phone-number endpoint.
type Client struct {
	http    *http.Client
	baseURL string
	version string
	token   string
	logger  *logger.Logger
}

// NewClient creates a Graph API client. The default timeout is 10 seconds.
func NewClient(cfg Config, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	version := cfg.APIVersion
	if version == "" {
		version = "v18.0"
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: cfg.BaseURL,
		version: version,
		token:   cfg.AccessToken,
		logger:  log,
	}
}

type sendRequest struct {
	MessagingProduct string       `json:"messaging_product"`
	RecipientType    string       `json:"recipient_type,omitempty"`
	To               string       `json:"to,omitempty"`
	Type             string       `json:"type,omitempty"`
	Text             *textBody    `json:"text,omitempty"`
	Interactive      *interactive `json:"interactive,omitempty"`
	Status           string       `json:"status,omitempty"`
	MessageID        string       `json:"message_id,omitempty"`
}

type textBody struct {
	Body string `json:"body"`
}

type interactive struct {
	Type   string   `json:"type"`
	Body   textBody `json:"body"`
	Action action   `json:"action"`
}

type action struct {
	Buttons []button `json:"buttons"`
}

type button struct {
	Type  string      `json:"type"`
	Reply buttonReply `json:"reply"`
}

type buttonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// SendInteractive delivers text as an interactive message with a single
// buy-now reply button.
func (c *Client) SendInteractive(ctx context.Context, to, body, phoneNumberID string) error {
	req := sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "interactive",
		Interactive: &interactive{
			Type: "button",
			Body: textBody{Body: body},
			Action: action{
				Buttons: []button{{
					Type:  "reply",
					Reply: buttonReply{ID: "buy_now", Title: BuyButtonTitle},
				}},
			},
		},
	}

	resp, err := c.post(ctx, phoneNumberID, req)
	if err != nil {
		return fmt.Errorf("failed to send interactive message: %w", err)
	}

	var messageID string
	if len(resp.Messages) > 0 {
		messageID = resp.Messages[0].ID
	}
	c.logger.Info("message sent",
		zap.String("to", to),
		zap.String("message_id", messageID),
	)
	return nil
}

// SendText delivers a plain text message.
func (c *Client) SendText(ctx context.Context, to, body, phoneNumberID string) error {
	req := sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             &textBody{Body: body},
	}
	if _, err := c.post(ctx, phoneNumberID, req); err != nil {
		return fmt.Errorf("failed to send text message: %w", err)
	}
	return nil
}

// MarkAsRead flags the source message as read. Best-effort: failures are
// logged, never returned as fatal to callers who ignore the error.
func (c *Client) MarkAsRead(ctx context.Context, messageID, phoneNumberID string) error {
	req := sendRequest{
		MessagingProduct: "whatsapp",
		Status:           "read",
		MessageID:        messageID,
	}
	if _, err := c.post(ctx, phoneNumberID, req); err != nil {
		c.logger.Warn("could not mark message as read",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		return err
	}
	c.logger.Debug("marked message as read", zap.String("message_id", messageID))
	return nil
}

func (c *Client) post(ctx context.Context, phoneNumberID string, payload sendRequest) (*sendResponse, error) {
	if c.token == "" {
		return nil, fmt.Errorf("missing WhatsApp access token")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.version, phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("graph API returned %d: %s", resp.StatusCode, data)
	}

	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
