// Command server runs the educational content HTTP API.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shiksha-ai/shiksha-server/internal/ai"
	"github.com/shiksha-ai/shiksha-server/internal/api"
	"github.com/shiksha-ai/shiksha-server/internal/archive"
	"github.com/shiksha-ai/shiksha-server/internal/content"
	"github.com/shiksha-ai/shiksha-server/internal/curriculum"
	"github.com/shiksha-ai/shiksha-server/internal/platform/cache"
	"github.com/shiksha-ai/shiksha-server/internal/platform/config"
	"github.com/shiksha-ai/shiksha-server/internal/platform/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg.Log))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	catalog, err := curriculum.Default()
	if err != nil {
		slog.Error("failed to load curriculum", "error", err)
		os.Exit(1)
	}

	router := newRouter(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	readiness := map[string]api.HealthChecker{}

	var store archive.Store = archive.NewMemoryStore()
	var events archive.EventLogger = archive.NopEventLogger{}
	if cfg.Database.Enabled() {
		db, err := database.Connect(ctx, cfg.Database.URL, database.Options{
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		readiness["database"] = db

		pgStore, err := archive.NewPostgresStore(ctx, db.Pool)
		if err != nil {
			slog.Error("failed to init archive", "error", err)
			os.Exit(1)
		}
		store = pgStore

		pgEvents, err := archive.NewPostgresEventLogger(ctx, db.Pool)
		if err != nil {
			slog.Error("failed to init event logger", "error", err)
			os.Exit(1)
		}
		events = pgEvents
	}

	var budget ai.BudgetChecker = ai.NewInMemoryBudget()
	if cfg.Cache.Enabled() {
		c, err := cache.Connect(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Error("failed to connect to cache", "error", err)
			os.Exit(1)
		}
		defer c.Close()
		readiness["cache"] = c
		budget = ai.NewRedisBudget(c.Client, cfg.Budget.Window)
	}

	generator := content.NewGenerator(content.GeneratorConfig{
		Backend:     router,
		Catalog:     catalog,
		Model:       cfg.Content.Model,
		Temperature: cfg.Content.Temperature,
		MaxTokens:   cfg.Content.MaxTokens,
		Timeout:     cfg.Content.Timeout,
	})

	server := api.NewServer(api.ServerConfig{
		Generator: generator,
		Catalog:   catalog,
		Archive:   store,
		Events:    events,
		Budget:    budget,
		Readiness: readiness,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * cfg.Content.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting",
			"addr", srv.Addr,
			"providers", router.Providers(),
			"topics", catalog.TopicCount(),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// newRouter registers every configured provider; registration order is the
// failover order.
func newRouter(cfg *config.Config) *ai.Router {
	router := ai.NewRouter()

	if cfg.AI.Anthropic.APIKey != "" {
		provider, err := ai.NewAnthropicProvider(cfg.AI.Anthropic.APIKey)
		if err != nil {
			slog.Error("failed to init anthropic provider", "error", err)
			os.Exit(1)
		}
		router.Register("anthropic", provider)
	}
	if cfg.AI.OpenAI.APIKey != "" {
		router.Register("openai", ai.NewOpenAIProvider(cfg.AI.OpenAI.APIKey))
	}
	if cfg.AI.DeepSeek.APIKey != "" {
		router.Register("deepseek", ai.NewDeepSeekProvider(cfg.AI.DeepSeek.APIKey))
	}
	if cfg.AI.Ollama.Enabled {
		router.Register("ollama", ai.NewOllamaProvider(cfg.AI.Ollama.URL))
	}

	return router
}
