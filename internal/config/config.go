// Package config provides environment configuration for the webhook server.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// Relational store
	DatabaseURL string

	// External cache
	RedisURL string

	// WhatsApp Business settings
	WhatsAppAppSecret   string
	WhatsAppVerifyToken string
	WhatsAppAccessToken string
	WhatsAppAPIBaseURL  string
	WhatsAppAPIVersion  string

	// Per-sender gates
	RateLimitEnabled bool
	RateLimitWindow  time.Duration
	RateLimitMax     int
	DebounceEnabled  bool
	DebounceWindow   time.Duration

	// Dashboard API
	JWTSecret        string
	APIRateLimit     int
	APIRateLimitSpan time.Duration
	FrontendURL      string

	// Eventing (optional)
	NATSURL   string
	NATSToken string

	// Template generation
	OpenAIAPIKey    string
	AnthropicAPIKey string
	DefaultLLM      string

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "3000"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		// Stores
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/leadflow?sslmode=disable"),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),

		// WhatsApp
		WhatsAppAppSecret:   getEnv("WHATSAPP_APP_SECRET", ""),
		WhatsAppVerifyToken: getEnv("WHATSAPP_WEBHOOK_VERIFY_TOKEN", ""),
		WhatsAppAccessToken: getEnv("WHATSAPP_ACCESS_TOKEN", ""),
		WhatsAppAPIBaseURL:  getEnv("WHATSAPP_API_BASE_URL", "https://graph.facebook.com"),
		WhatsAppAPIVersion:  getEnv("WHATSAPP_API_VERSION", "v18.0"),

		// Gates
		RateLimitEnabled: getBoolEnv("ENABLE_RATE_LIMITING", true),
		RateLimitWindow:  getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitMax:     getIntEnv("RATE_LIMIT_MAX_REQUESTS", 1),
		DebounceEnabled:  getBoolEnv("ENABLE_DEBOUNCE", true),
		DebounceWindow:   getDurationEnv("DEBOUNCE_WINDOW", 3*time.Second),

		// Dashboard API
		JWTSecret:        getEnv("JWT_SECRET", "development-secret-change-in-production"),
		APIRateLimit:     getIntEnv("API_RATE_LIMIT_REQUESTS", 60),
		APIRateLimitSpan: getDurationEnv("API_RATE_LIMIT_WINDOW", time.Minute),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Eventing
		NATSURL:   getEnv("NATS_URL", ""),
		NATSToken: getEnv("NATS_TOKEN", ""),

		// Template generation
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		DefaultLLM:      getEnv("DEFAULT_LLM", "openai"),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
