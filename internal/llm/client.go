// Package llm provides LLM client interfaces and implementations for
// AI-assisted template generation. The webhook pipeline never depends on
// this package; it only backs the dashboard's generate endpoint.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// TemplateDraft is one generated template with its trigger keywords.
type TemplateDraft struct {
	Category     string   `json:"category"`
	ResponseText string   `json:"response_text"`
	Keywords     []string `json:"keywords"`
}

// Client is the interface for template-generation providers.
type Client interface {
	// GenerateTemplates analyzes a store URL and returns per-category
	// response templates with trigger keywords.
	GenerateTemplates(ctx context.Context, storeURL string) ([]TemplateDraft, error)

	// Name returns the provider name.
	Name() string
}

// Provider is the type of LLM provider.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// NewClient creates a new LLM client based on provider.
func NewClient(provider Provider, apiKey string) (Client, error) {
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicClient(apiKey)
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey)
	default:
		return NewOpenAIClient(apiKey)
	}
}

const systemPrompt = `Você é um assistente especialista em e-commerce e atendimento ao cliente no Brasil.
Sua tarefa é analisar a URL fornecida e extrair informações sobre a loja para gerar templates de atendimento automático.

IMPORTANTE: Gere textos de resposta naturais, educados e vendedores em Português do Brasil.
Use variáveis {{preco}}, {{cores_disponiveis}} e {{link_produto}} quando apropriado nos textos.
Inclua emojis relevantes nos textos de resposta.

Responda APENAS com JSON no formato:
{"templates": [{"category": "...", "response_text": "...", "keywords": ["..."]}]}

As categorias devem ser exatamente: Preço, Cores, Tamanhos, Pagamento, Frete, Trocas, Outro.
Para cada categoria, gere um texto de resposta e de 5 a 10 palavras-chave.`

func userPrompt(storeURL string) string {
	return fmt.Sprintf("Analise a loja no endereço: %s e gere os templates de atendimento automático.", storeURL)
}

// parseDrafts extracts the structured template list from a model response,
// tolerating surrounding prose and markdown code fences.
func parseDrafts(content string) ([]TemplateDraft, error) {
	content = strings.TrimSpace(content)
	if start := strings.Index(content, "{"); start >= 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			content = content[start : end+1]
		}
	}

	var out struct {
		Templates []TemplateDraft `json:"templates"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("failed to parse template response: %w", err)
	}
	if len(out.Templates) == 0 {
		return nil, fmt.Errorf("model returned no templates")
	}
	return out.Templates, nil
}
