package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/leadflow/leadflow-backend/internal/model"
	"github.com/leadflow/leadflow-backend/internal/store"
	"github.com/leadflow/leadflow-backend/pkg/logger"
)

type fakeTemplateSource struct {
	templates map[string]*model.Template
	err       error
}

func (f *fakeTemplateSource) GetActiveTemplate(ctx context.Context, userID, category string) (*model.Template, error) {
	if f.err != nil {
		return nil, f.err
	}
	if tmpl, ok := f.templates[category]; ok {
		return tmpl, nil
	}
	return nil, store.ErrNotFound
}

func strPtr(s string) *string { return &s }

func TestResolvePrefersAccountTemplate(t *testing.T) {
	src := &fakeTemplateSource{templates: map[string]*model.Template{
		"Preço": {Category: "Preço", ResponseText: "Custa {{preco}}, aproveite!"},
	}}
	r := NewTemplateResolver(src, logger.NewNop())

	got := r.Resolve(context.Background(), "user-1", strPtr("Preço"))
	if got != "Custa {{preco}}, aproveite!" {
		t.Errorf("Resolve = %q, want account template", got)
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	r := NewTemplateResolver(&fakeTemplateSource{}, logger.NewNop())

	got := r.Resolve(context.Background(), "user-1", strPtr("Frete"))
	if got != defaultTemplates["Frete"] {
		t.Errorf("Resolve = %q, want built-in Frete template", got)
	}
}

func TestResolveNilCategoryUsesFallback(t *testing.T) {
	r := NewTemplateResolver(&fakeTemplateSource{}, logger.NewNop())

	got := r.Resolve(context.Background(), "user-1", nil)
	if got != defaultTemplates[FallbackCategory] {
		t.Errorf("Resolve = %q, want fallback template", got)
	}
}

func TestResolveUnknownCategoryUsesFallback(t *testing.T) {
	r := NewTemplateResolver(&fakeTemplateSource{}, logger.NewNop())

	got := r.Resolve(context.Background(), "user-1", strPtr("Categoria Inexistente"))
	if got != defaultTemplates[FallbackCategory] {
		t.Errorf("Resolve = %q, want fallback template", got)
	}
}

func TestResolveSourceErrorFallsBack(t *testing.T) {
	src := &fakeTemplateSource{err: errors.New("connection reset")}
	r := NewTemplateResolver(src, logger.NewNop())

	got := r.Resolve(context.Background(), "user-1", strPtr("Cores"))
	if got != defaultTemplates["Cores"] {
		t.Errorf("Resolve = %q, want built-in Cores template", got)
	}
}

func TestResolveNeverEmpty(t *testing.T) {
	r := NewTemplateResolver(nil, logger.NewNop())

	for _, category := range []*string{nil, strPtr("Preço"), strPtr("???")} {
		if got := r.Resolve(context.Background(), "", category); got == "" {
			t.Errorf("Resolve(%v) returned empty response", category)
		}
	}
}

func TestBuildResponseSubstitution(t *testing.T) {
	cfg := &model.StoreConfig{
		DefaultPrice:    "R$ 149,90",
		AvailableColors: "preto, branco e azul",
		ProductLink:     "https://loja.example/p/1",
	}

	got := BuildResponse("Por {{preco}}, nas cores {{cores_disponiveis}}. Veja: {{link_produto}}", cfg)
	want := "Por R$ 149,90, nas cores preto, branco e azul. Veja: https://loja.example/p/1"
	if got != want {
		t.Errorf("BuildResponse = %q, want %q", got, want)
	}
}

func TestBuildResponseMissingConfig(t *testing.T) {
	got := BuildResponse("O valor é {{preco}}", &model.StoreConfig{})
	if !strings.Contains(got, "[preço não configurado]") {
		t.Errorf("BuildResponse = %q, want not-configured marker", got)
	}

	got = BuildResponse("Cores: {{cores_disponiveis}}, link: {{link_produto}}", nil)
	if !strings.Contains(got, "[cores não configuradas]") || !strings.Contains(got, "[link não configurado]") {
		t.Errorf("BuildResponse = %q, want not-configured markers", got)
	}
}

func TestBuildResponseLeavesUnknownTokens(t *testing.T) {
	got := BuildResponse("Olá {{nome}}, custa {{preco}}", &model.StoreConfig{DefaultPrice: "R$ 10"})
	if !strings.Contains(got, "{{nome}}") {
		t.Errorf("BuildResponse = %q, unknown token should be left untouched", got)
	}
	if strings.Contains(got, "{{preco}}") {
		t.Errorf("BuildResponse = %q, known token should be substituted", got)
	}
}
