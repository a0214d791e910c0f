package llm

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient is the Anthropic template-generation client.
type AnthropicClient struct {
	client *anthropic.Client
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(apiKey string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}
	return &AnthropicClient{client: anthropic.NewClient(option.WithAPIKey(apiKey))}, nil
}

// Name returns the provider name.
func (c *AnthropicClient) Name() string {
	return "anthropic"
}

// GenerateTemplates asks the model for per-category templates and keywords.
func (c *AnthropicClient) GenerateTemplates(ctx context.Context, storeURL string) ([]TemplateDraft, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F("claude-3-5-sonnet-20241022"),
		MaxTokens: anthropic.F(int64(4096)),
		System: anthropic.F([]anthropic.TextBlockParam{{
			Type: anthropic.F(anthropic.TextBlockParamTypeText),
			Text: anthropic.F(systemPrompt),
		}}),
		Messages: anthropic.F([]anthropic.MessageParam{{
			Role: anthropic.F(anthropic.MessageParamRoleUser),
			Content: anthropic.F([]anthropic.ContentBlockParamUnion{
				anthropic.TextBlockParam{
					Type: anthropic.F(anthropic.TextBlockParamTypeText),
					Text: anthropic.F(userPrompt(storeURL)),
				},
			}),
		}}),
	})
	if err != nil {
		return nil, err
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			content += block.Text
		}
	}
	return parseDrafts(content)
}
