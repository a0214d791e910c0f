package llm

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient is the OpenAI template-generation client.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	return &OpenAIClient{client: openai.NewClient(apiKey)}, nil
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return "openai"
}

// GenerateTemplates asks the model for per-category templates and keywords.
func (c *OpenAIClient) GenerateTemplates(ctx context.Context, storeURL string) ([]TemplateDraft, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4o,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(storeURL)},
		},
		MaxTokens: 4096,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("empty completion response")
	}
	return parseDrafts(resp.Choices[0].Message.Content)
}
