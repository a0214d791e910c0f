// Package service provides the message-processing business logic: intent
// classification, template resolution, the webhook pipeline and the lead
// funnel.
package service

import (
	"context"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/leadflow/leadflow-backend/internal/model"
	"github.com/leadflow/leadflow-backend/pkg/logger"
)

// Dictionary is one category with its ordered trigger keywords.
type Dictionary struct {
	Category string
	Keywords []string
}

// defaultDictionaries is the built-in mapping used when an account has no
// custom keywords. Order matters: the first category with a matching keyword
// wins.
var defaultDictionaries = []Dictionary{
	{Category: "Preço", Keywords: []string{
		"preço", "quanto custa", "valor", "quanto é", "barato", "caro",
		"desconto", "promoção", "oferta",
	}},
	{Category: "Cores", Keywords: []string{
		"cor", "cores", "colorido", "preto", "branco", "azul", "vermelho",
		"rosa", "verde",
	}},
	{Category: "Tamanhos", Keywords: []string{
		"tamanho", "número", "medida", "p ", "m ", "g ", "gg", "grande",
		"pequeno",
	}},
	{Category: "Pagamento", Keywords: []string{
		"pagamento", "pagar", "parcela", "pix", "cartão", "boleto", "dinheiro",
	}},
	{Category: "Frete", Keywords: []string{
		"frete", "entrega", "envio", "prazo", "correios", "sedex",
		"transportadora",
	}},
	{Category: "Trocas", Keywords: []string{
		"troca", "devolução", "defeito", "arrependimento", "reembolso",
		"garantia",
	}},
}

// KeywordSource loads an account's custom keyword dictionaries.
type KeywordSource interface {
	GetKeywordDictionaries(ctx context.Context, userID string) ([]model.KeywordDictionary, error)
}

// Classifier maps free-text messages to an intent category by substring
// keyword matching, first match wins.
type Classifier struct {
	keywords KeywordSource
	logger   *logger.Logger
}

// NewClassifier creates a classifier backed by per-account dictionaries.
func NewClassifier(keywords KeywordSource, log *logger.Logger) *Classifier {
	return &Classifier{keywords: keywords, logger: log}
}

// Classify normalizes the text and scans the account's dictionary (falling
// back to the built-in defaults) category by category, keyword by keyword.
// The first keyword whose normalized form is a substring of the normalized
// message decides the category.
func (c *Classifier) Classify(ctx context.Context, text, userID string) model.ClassificationResult {
	if strings.TrimSpace(text) == "" {
		return model.ClassificationResult{Matched: false}
	}

	normalized := Normalize(text)
	dictionaries := c.dictionariesFor(ctx, userID)

	for _, dict := range dictionaries {
		for _, keyword := range dict.Keywords {
			if strings.Contains(normalized, Normalize(keyword)) {
				category := dict.Category
				c.logger.Info("message classified",
					zap.String("category", category),
					zap.String("keyword", keyword),
				)
				return model.ClassificationResult{Category: &category, Matched: true}
			}
		}
	}

	c.logger.Info("no classification match")
	return model.ClassificationResult{Matched: false}
}

// dictionariesFor returns the account's custom dictionaries when present and
// non-empty; a fetch failure falls back silently to the defaults.
func (c *Classifier) dictionariesFor(ctx context.Context, userID string) []Dictionary {
	if userID == "" || c.keywords == nil {
		return defaultDictionaries
	}

	custom, err := c.keywords.GetKeywordDictionaries(ctx, userID)
	if err != nil {
		c.logger.Warn("could not fetch custom keywords, using defaults",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return defaultDictionaries
	}
	if len(custom) == 0 {
		return defaultDictionaries
	}

	dictionaries := make([]Dictionary, len(custom))
	for i, kw := range custom {
		dictionaries[i] = Dictionary{Category: kw.Category, Keywords: kw.Keywords}
	}
	return dictionaries
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize lowercases, strips diacritics and trims, so keyword matching is
// insensitive to case and accents.
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	stripped, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		return strings.TrimSpace(lowered)
	}
	return strings.TrimSpace(stripped)
}
