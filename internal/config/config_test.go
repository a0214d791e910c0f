package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ServerPort != "3000" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "3000")
	}
	if cfg.WhatsAppAPIBaseURL != "https://graph.facebook.com" {
		t.Errorf("WhatsAppAPIBaseURL = %q, want graph API base", cfg.WhatsAppAPIBaseURL)
	}
	if cfg.WhatsAppAPIVersion != "v18.0" {
		t.Errorf("WhatsAppAPIVersion = %q, want %q", cfg.WhatsAppAPIVersion, "v18.0")
	}
	if !cfg.RateLimitEnabled {
		t.Error("RateLimitEnabled = false, want true")
	}
	if cfg.RateLimitWindow != time.Minute {
		t.Errorf("RateLimitWindow = %v, want 1m", cfg.RateLimitWindow)
	}
	if cfg.RateLimitMax != 1 {
		t.Errorf("RateLimitMax = %d, want 1", cfg.RateLimitMax)
	}
	if !cfg.DebounceEnabled {
		t.Error("DebounceEnabled = false, want true")
	}
	if cfg.DebounceWindow != 3*time.Second {
		t.Errorf("DebounceWindow = %v, want 3s", cfg.DebounceWindow)
	}
	if cfg.DefaultLLM != "openai" {
		t.Errorf("DefaultLLM = %q, want %q", cfg.DefaultLLM, "openai")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "5")
	t.Setenv("ENABLE_DEBOUNCE", "false")
	t.Setenv("WHATSAPP_APP_SECRET", "secret")

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.RateLimitWindow != 30*time.Second {
		t.Errorf("RateLimitWindow = %v, want 30s", cfg.RateLimitWindow)
	}
	if cfg.RateLimitMax != 5 {
		t.Errorf("RateLimitMax = %d, want 5", cfg.RateLimitMax)
	}
	if cfg.DebounceEnabled {
		t.Error("DebounceEnabled = true, want false")
	}
	if cfg.WhatsAppAppSecret != "secret" {
		t.Errorf("WhatsAppAppSecret = %q, want %q", cfg.WhatsAppAppSecret, "secret")
	}
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "not-a-number")
	t.Setenv("RATE_LIMIT_WINDOW", "soon")
	t.Setenv("ENABLE_RATE_LIMITING", "yes-please")

	cfg := Load()

	if cfg.RateLimitMax != 1 {
		t.Errorf("RateLimitMax = %d, want default 1", cfg.RateLimitMax)
	}
	if cfg.RateLimitWindow != time.Minute {
		t.Errorf("RateLimitWindow = %v, want default 1m", cfg.RateLimitWindow)
	}
	if !cfg.RateLimitEnabled {
		t.Error("RateLimitEnabled = false, want default true")
	}
}
