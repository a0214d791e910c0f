// Package main is the entry point for the webhook server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/leadflow/leadflow-backend/internal/cache"
	"github.com/leadflow/leadflow-backend/internal/config"
	"github.com/leadflow/leadflow-backend/internal/events"
	"github.com/leadflow/leadflow-backend/internal/handler"
	"github.com/leadflow/leadflow-backend/internal/llm"
	"github.com/leadflow/leadflow-backend/internal/middleware"
	"github.com/leadflow/leadflow-backend/internal/service"
	"github.com/leadflow/leadflow-backend/internal/store"
	"github.com/leadflow/leadflow-backend/internal/whatsapp"
	"github.com/leadflow/leadflow-backend/pkg/logger"
	"github.com/leadflow/leadflow-backend/pkg/tracing"
)

const fallbackSweepInterval = 5 * time.Minute

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting webhook server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "leadflow-backend", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to Postgres
	st, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	if err := st.AutoMigrate(); err != nil {
		log.Error("failed to migrate database", zap.Error(err))
		os.Exit(1)
	}

	// Connect to Redis. A failed connection is not fatal: the gates degrade
	// to their in-process fallback.
	var redisCache *cache.Redis
	if rc, err := cache.NewRedis(cfg.RedisURL); err != nil {
		log.Warn("invalid Redis configuration, gates run on in-process fallback", zap.Error(err))
	} else {
		redisCache = rc
		defer redisCache.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			log.Warn("Redis unreachable at startup", zap.Error(err))
		}
		cancel()
	}

	// Gate caches: one local fallback per gate, sharing the Redis primary.
	rateLimitFallback := cache.NewMemory(fallbackSweepInterval)
	defer rateLimitFallback.Stop()
	debounceFallback := cache.NewMemory(fallbackSweepInterval)
	defer debounceFallback.Stop()

	var primary cache.Cache
	if redisCache != nil {
		primary = redisCache
	}
	rateLimitCache := cache.NewFailover(primary, rateLimitFallback, log)
	debounceCache := cache.NewFailover(primary, debounceFallback, log)

	// Connect to NATS if configured
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		publisher, err = events.Connect(cfg.NATSURL, cfg.NATSToken, log)
		if err != nil {
			log.Warn("failed to connect to NATS, events disabled", zap.Error(err))
		} else {
			defer publisher.Close()
		}
	}

	// Initialize LLM client for template generation
	var llmClient llm.Client
	switch {
	case cfg.DefaultLLM == string(llm.ProviderAnthropic) && cfg.AnthropicAPIKey != "":
		llmClient, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	case cfg.OpenAIAPIKey != "":
		llmClient, err = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	case cfg.AnthropicAPIKey != "":
		llmClient, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	}
	if err != nil {
		log.Warn("failed to create LLM client, template generation disabled", zap.Error(err))
		llmClient = nil
	}

	// Outbound sender
	sender := whatsapp.NewClient(whatsapp.Config{
		BaseURL:     cfg.WhatsAppAPIBaseURL,
		APIVersion:  cfg.WhatsAppAPIVersion,
		AccessToken: cfg.WhatsAppAccessToken,
	}, log)

	// Initialize services
	classifier := service.NewClassifier(st, log)
	templates := service.NewTemplateResolver(st, log)
	leadSvc := service.NewLeadService(st, publisher, log)
	pipeline := service.NewPipeline(st, classifier, templates, sender, leadSvc, publisher, log)

	// Initialize handlers
	webhookHandler := handler.NewWebhookHandler(pipeline, cfg.WhatsAppVerifyToken, log)
	healthHandler := handler.NewHealthHandler(redisCache, st, rateLimitCache, debounceCache, map[string]any{
		"rate_limit_window":  cfg.RateLimitWindow.String(),
		"rate_limit_max":     cfg.RateLimitMax,
		"debounce_window":    cfg.DebounceWindow.String(),
		"rate_limit_enabled": cfg.RateLimitEnabled,
		"debounce_enabled":   cfg.DebounceEnabled,
	})
	leadHandler := handler.NewLeadHandler(leadSvc, st, log)
	templateHandler := handler.NewTemplateHandler(llmClient, st, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/health/stats", healthHandler.Stats)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// WhatsApp webhook
	r.Route("/webhooks", func(r chi.Router) {
		r.Get("/whatsapp", webhookHandler.Verify)
		r.With(
			middleware.VerifySignature(cfg.WhatsAppAppSecret, log),
			middleware.RateLimit(rateLimitCache, middleware.RateLimitConfig{
				Enabled:     cfg.RateLimitEnabled,
				Window:      cfg.RateLimitWindow,
				MaxRequests: cfg.RateLimitMax,
			}, log),
			middleware.Debounce(debounceCache, middleware.DebounceConfig{
				Enabled: cfg.DebounceEnabled,
				Window:  cfg.DebounceWindow,
			}, log),
		).Post("/whatsapp", webhookHandler.Receive)
	})

	// Dashboard API with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.APIRateLimit(cfg.APIRateLimit, cfg.APIRateLimitSpan))

		r.Get("/leads", leadHandler.List)
		r.Post("/leads/{id}/assume", leadHandler.Assume)
		r.Post("/leads/{id}/sold", leadHandler.Sold)
		r.Get("/logs", leadHandler.Logs)
		r.Post("/templates/generate", templateHandler.Generate)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
