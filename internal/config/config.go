package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the deck
// generation service.
type Config struct {
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"deckgen-server"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8190"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	LLMBaseURL string        `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMAPIKey  string        `env:"LLM_API_KEY"`
	LLMModel   string        `env:"LLM_MODEL" envDefault:"gpt-4.1"`
	LLMTimeout time.Duration `env:"LLM_TIMEOUT" envDefault:"120s"`

	PexelsAPIKey string `env:"PEXELS_API_KEY"`
	SerperAPIKey string `env:"SERPER_API_KEY"`

	TempStoragePath  string `env:"TEMP_STORAGE_PATH" envDefault:"/tmp/deckgen"`
	SourceCharBudget int    `env:"SOURCE_CHAR_BUDGET" envDefault:"60000"`
}

// Load parses environment variables into Config.
//
// Configuration Loading Order (highest to lowest priority):
// 1. Environment variables
// 2. .env file (if present)
// 3. Default values from struct tags
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if strings.TrimSpace(cfg.LLMBaseURL) == "" {
		return nil, fmt.Errorf("LLM_BASE_URL cannot be empty")
	}
	if cfg.SourceCharBudget <= 0 {
		return nil, fmt.Errorf("SOURCE_CHAR_BUDGET must be positive")
	}
	if cfg.EnableTracing && strings.TrimSpace(cfg.OTLPEndpoint) == "" {
		return nil, fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT is required when ENABLE_TRACING is true")
	}

	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
