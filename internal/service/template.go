package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/leadflow/leadflow-backend/internal/model"
	"github.com/leadflow/leadflow-backend/internal/store"
	"github.com/leadflow/leadflow-backend/pkg/logger"
)

// FallbackCategory is the template category used when classification found
// no match.
const FallbackCategory = "Outro"

// defaultTemplates are the built-in response texts per category.
var defaultTemplates = map[string]string{
	"Preço":     "O valor do nosso produto é {{preco}}. Temos condições especiais! 💰",
	"Cores":     "Temos disponível nas cores: {{cores_disponiveis}}. Qual combina mais com você? 🎨",
	"Tamanhos":  "Trabalhamos com tamanhos P, M, G e GG. Posso te ajudar a escolher o ideal? 📏",
	"Pagamento": "Aceitamos PIX, cartão de crédito (até 12x) e boleto bancário. 💳",
	"Frete":     "Fazemos envio para todo o Brasil! O prazo médio é de 5-10 dias úteis. 📦",
	"Trocas":    "Aceitamos trocas em até 7 dias após o recebimento, desde que o produto esteja sem uso e com etiqueta. Entre em contato para iniciar o processo! 🔄",
	"Outro":     "Obrigado pelo contato! Vou verificar e te respondo em breve. 😊",
}

// Placeholder markers substituted into missing store configuration fields.
const (
	missingPrice  = "[preço não configurado]"
	missingColors = "[cores não configuradas]"
	missingLink   = "[link não configurado]"
)

// TemplateSource loads an account's active template for a category.
type TemplateSource interface {
	GetActiveTemplate(ctx context.Context, userID, category string) (*model.Template, error)
}

// TemplateResolver picks the response text for a classified message:
// per-account active template, else built-in template for the category,
// else the built-in fallback. No path yields an empty response.
type TemplateResolver struct {
	templates TemplateSource
	logger    *logger.Logger
}

// NewTemplateResolver creates a resolver backed by per-account templates.
func NewTemplateResolver(templates TemplateSource, log *logger.Logger) *TemplateResolver {
	return &TemplateResolver{templates: templates, logger: log}
}

// Resolve returns the raw (unsubstituted) response text for a category.
func (r *TemplateResolver) Resolve(ctx context.Context, userID string, category *string) string {
	lookup := FallbackCategory
	if category != nil {
		lookup = *category
	}

	if r.templates != nil && userID != "" {
		tmpl, err := r.templates.GetActiveTemplate(ctx, userID, lookup)
		if err == nil {
			return tmpl.ResponseText
		}
		if !errors.Is(err, store.ErrNotFound) {
			r.logger.Warn("could not fetch template, using default",
				zap.String("category", lookup),
				zap.Error(err),
			)
		}
	}

	if text, ok := defaultTemplates[lookup]; ok {
		return text
	}
	return defaultTemplates[FallbackCategory]
}

// BuildResponse substitutes the recognized placeholders with store
// configuration values. Missing fields become a visible not-configured
// marker; unrecognized tokens are left untouched.
func BuildResponse(text string, cfg *model.StoreConfig) string {
	price, colors, link := missingPrice, missingColors, missingLink
	if cfg != nil {
		if cfg.DefaultPrice != "" {
			price = cfg.DefaultPrice
		}
		if cfg.AvailableColors != "" {
			colors = cfg.AvailableColors
		}
		if cfg.ProductLink != "" {
			link = cfg.ProductLink
		}
	}

	replacer := strings.NewReplacer(
		"{{preco}}", price,
		"{{cores_disponiveis}}", colors,
		"{{link_produto}}", link,
	)
	return replacer.Replace(text)
}
