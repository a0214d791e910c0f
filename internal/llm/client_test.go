package llm

import "testing"

func TestParseDrafts(t *testing.T) {
	content := `{"templates":[{"category":"Preço","response_text":"Custa {{preco}} 💰","keywords":["preço","valor"]}]}`

	drafts, err := parseDrafts(content)
	if err != nil {
		t.Fatalf("parseDrafts: %v", err)
	}
	if len(drafts) != 1 {
		t.Fatalf("drafts = %d, want 1", len(drafts))
	}
	if drafts[0].Category != "Preço" {
		t.Errorf("Category = %q, want %q", drafts[0].Category, "Preço")
	}
	if len(drafts[0].Keywords) != 2 {
		t.Errorf("Keywords = %v, want 2 entries", drafts[0].Keywords)
	}
}

func TestParseDraftsToleratesFences(t *testing.T) {
	content := "Aqui estão os templates:\n```json\n" +
		`{"templates":[{"category":"Frete","response_text":"Enviamos para todo o Brasil 📦","keywords":["frete"]}]}` +
		"\n```\nEspero que ajude!"

	drafts, err := parseDrafts(content)
	if err != nil {
		t.Fatalf("parseDrafts: %v", err)
	}
	if len(drafts) != 1 || drafts[0].Category != "Frete" {
		t.Errorf("drafts = %+v, want one Frete draft", drafts)
	}
}

func TestParseDraftsRejectsGarbage(t *testing.T) {
	for _, content := range []string{"", "no json here", `{"templates":[]}`} {
		if _, err := parseDrafts(content); err == nil {
			t.Errorf("parseDrafts(%q) succeeded, want error", content)
		}
	}
}

func TestNewClientProviderSelection(t *testing.T) {
	openai, err := NewClient(ProviderOpenAI, "key")
	if err != nil {
		t.Fatalf("NewClient openai: %v", err)
	}
	if openai.Name() != "openai" {
		t.Errorf("Name = %q, want %q", openai.Name(), "openai")
	}

	anthropic, err := NewClient(ProviderAnthropic, "key")
	if err != nil {
		t.Fatalf("NewClient anthropic: %v", err)
	}
	if anthropic.Name() != "anthropic" {
		t.Errorf("Name = %q, want %q", anthropic.Name(), "anthropic")
	}
}
