package service

import (
	"context"
	"errors"
	"testing"

	"github.com/leadflow/leadflow-backend/internal/model"
	"github.com/leadflow/leadflow-backend/pkg/logger"
)

type fakeKeywordSource struct {
	dicts []model.KeywordDictionary
	err   error
}

func (f *fakeKeywordSource) GetKeywordDictionaries(ctx context.Context, userID string) ([]model.KeywordDictionary, error) {
	return f.dicts, f.err
}

func TestClassifyDefaults(t *testing.T) {
	c := NewClassifier(nil, logger.NewNop())
	ctx := context.Background()

	tests := []struct {
		text string
		want string
	}{
		{"Qual o preço?", "Preço"},
		{"quanto custa esse vestido", "Preço"},
		{"Tem na cor azul?", "Cores"},
		{"qual tamanho vocês têm", "Tamanhos"},
		{"aceita pix?", "Pagamento"},
		{"quanto fica o frete pra SP", "Frete"},
		{"como funciona a troca", "Trocas"},
	}
	for _, tt := range tests {
		got := c.Classify(ctx, tt.text, "")
		if !got.Matched || got.Category == nil {
			t.Errorf("Classify(%q) matched nothing, want %q", tt.text, tt.want)
			continue
		}
		if *got.Category != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.text, *got.Category, tt.want)
		}
	}
}

func TestClassifyIgnoresCaseAndAccents(t *testing.T) {
	c := NewClassifier(nil, logger.NewNop())
	ctx := context.Background()

	for _, text := range []string{"QUAL O PREÇO", "qual o preco", "Qual o PREço?"} {
		got := c.Classify(ctx, text, "")
		if !got.Matched || got.Category == nil || *got.Category != "Preço" {
			t.Errorf("Classify(%q) = %+v, want Preço", text, got)
		}
	}
}

func TestClassifyNoMatch(t *testing.T) {
	c := NewClassifier(nil, logger.NewNop())

	got := c.Classify(context.Background(), "boa tarde, tudo certo?", "")
	if got.Matched {
		t.Errorf("Classify = %+v, want no match", got)
	}
	if got.Category != nil {
		t.Errorf("Category = %q, want nil", *got.Category)
	}
}

func TestClassifyEmptyText(t *testing.T) {
	c := NewClassifier(nil, logger.NewNop())

	for _, text := range []string{"", "   "} {
		if got := c.Classify(context.Background(), text, ""); got.Matched {
			t.Errorf("Classify(%q) = %+v, want no match", text, got)
		}
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	c := NewClassifier(nil, logger.NewNop())

	// Mentions both price and color keywords; the price dictionary comes
	// first in the scan order.
	got := c.Classify(context.Background(), "qual o preço do azul?", "")
	if !got.Matched || got.Category == nil || *got.Category != "Preço" {
		t.Errorf("Classify = %+v, want Preço", got)
	}
}

func TestClassifyCustomDictionaries(t *testing.T) {
	src := &fakeKeywordSource{dicts: []model.KeywordDictionary{
		{Category: "Estoque", Keywords: []string{"disponível", "tem ainda"}},
	}}
	c := NewClassifier(src, logger.NewNop())
	ctx := context.Background()

	got := c.Classify(ctx, "esse ainda está disponível?", "user-1")
	if !got.Matched || got.Category == nil || *got.Category != "Estoque" {
		t.Errorf("Classify = %+v, want Estoque", got)
	}

	// Custom dictionaries replace the defaults entirely.
	if got := c.Classify(ctx, "qual o preço?", "user-1"); got.Matched {
		t.Errorf("Classify with custom dicts = %+v, want no match", got)
	}
}

func TestClassifyFallsBackOnSourceError(t *testing.T) {
	src := &fakeKeywordSource{err: errors.New("connection reset")}
	c := NewClassifier(src, logger.NewNop())

	got := c.Classify(context.Background(), "qual o preço?", "user-1")
	if !got.Matched || got.Category == nil || *got.Category != "Preço" {
		t.Errorf("Classify = %+v, want default Preço", got)
	}
}

func TestClassifyFallsBackOnEmptyCustom(t *testing.T) {
	src := &fakeKeywordSource{}
	c := NewClassifier(src, logger.NewNop())

	got := c.Classify(context.Background(), "aceita cartão?", "user-1")
	if !got.Matched || got.Category == nil || *got.Category != "Pagamento" {
		t.Errorf("Classify = %+v, want default Pagamento", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Olá, QUANTO Custa?", "ola, quanto custa?"},
		{"  promoção  ", "promocao"},
		{"já", "ja"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
