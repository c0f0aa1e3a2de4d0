// Package config loads application configuration from environment variables.
// All variables use the SHIKSHA_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	AI       AIConfig
	Content  ContentConfig
	Budget   BudgetConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int
	Host            string
	ShutdownTimeout time.Duration
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds PostgreSQL connection settings. The database is
// optional: without a URL the server archives to memory only.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// Enabled reports whether a database was configured.
func (d DatabaseConfig) Enabled() bool { return d.URL != "" }

// CacheConfig holds Redis/Dragonfly connection settings. Optional; without
// it budgets are tracked in memory.
type CacheConfig struct {
	URL string
}

// Enabled reports whether a cache was configured.
func (c CacheConfig) Enabled() bool { return c.URL != "" }

// AIConfig holds configuration for the generation backends.
type AIConfig struct {
	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig
	DeepSeek  DeepSeekConfig
	Ollama    OllamaConfig
}

// OpenAIConfig holds OpenAI provider settings.
type OpenAIConfig struct {
	APIKey string
}

// AnthropicConfig holds Anthropic provider settings.
type AnthropicConfig struct {
	APIKey string
}

// DeepSeekConfig holds DeepSeek provider settings (OpenAI-compatible).
type DeepSeekConfig struct {
	APIKey string
}

// OllamaConfig holds self-hosted Ollama settings.
type OllamaConfig struct {
	Enabled bool
	URL     string
}

// ContentConfig tunes the generation pipeline.
type ContentConfig struct {
	Model       string // backend-specific model override
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// BudgetConfig tunes per-client token budgets.
type BudgetConfig struct {
	Window time.Duration // rolling window for cache-backed budgets
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with SHIKSHA_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            envInt("SHIKSHA_SERVER_PORT", 8080),
			Host:            envStr("SHIKSHA_SERVER_HOST", "0.0.0.0"),
			ShutdownTimeout: envDur("SHIKSHA_SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL:      envStr("SHIKSHA_DATABASE_URL", ""),
			MaxConns: envInt("SHIKSHA_DATABASE_MAX_CONNS", 25),
			MinConns: envInt("SHIKSHA_DATABASE_MIN_CONNS", 5),
		},
		Cache: CacheConfig{
			URL: envStr("SHIKSHA_CACHE_URL", ""),
		},
		AI: AIConfig{
			OpenAI: OpenAIConfig{
				APIKey: envStr("SHIKSHA_AI_OPENAI_API_KEY", ""),
			},
			Anthropic: AnthropicConfig{
				APIKey: envStr("SHIKSHA_AI_ANTHROPIC_API_KEY", ""),
			},
			DeepSeek: DeepSeekConfig{
				APIKey: envStr("SHIKSHA_AI_DEEPSEEK_API_KEY", ""),
			},
			Ollama: OllamaConfig{
				Enabled: envBool("SHIKSHA_AI_OLLAMA_ENABLED", false),
				URL:     envStr("SHIKSHA_AI_OLLAMA_URL", "http://localhost:11434"),
			},
		},
		Content: ContentConfig{
			Model:       envStr("SHIKSHA_CONTENT_MODEL", ""),
			Temperature: envFloat("SHIKSHA_CONTENT_TEMPERATURE", 0.7),
			MaxTokens:   envInt("SHIKSHA_CONTENT_MAX_TOKENS", 4096),
			Timeout:     envDur("SHIKSHA_CONTENT_TIMEOUT", 60*time.Second),
		},
		Budget: BudgetConfig{
			Window: envDur("SHIKSHA_BUDGET_WINDOW", 24*time.Hour),
		},
		Log: LogConfig{
			Level:  envStr("SHIKSHA_LOG_LEVEL", "info"),
			Format: envStr("SHIKSHA_LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if !c.HasAIProvider() {
		return fmt.Errorf("at least one AI provider must be configured")
	}
	if c.Content.Temperature < 0 || c.Content.Temperature > 2 {
		return fmt.Errorf("SHIKSHA_CONTENT_TEMPERATURE must be between 0 and 2, got %g", c.Content.Temperature)
	}
	if c.Content.Timeout <= 0 {
		return fmt.Errorf("SHIKSHA_CONTENT_TIMEOUT must be positive")
	}
	return nil
}

// HasAIProvider returns true if at least one AI provider is configured.
func (c *Config) HasAIProvider() bool {
	return c.AI.OpenAI.APIKey != "" ||
		c.AI.Anthropic.APIKey != "" ||
		c.AI.DeepSeek.APIKey != "" ||
		c.AI.Ollama.Enabled
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
