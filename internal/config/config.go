package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	DatasetPath string `env:"PATTERNS_DATASET" envDefault:"nightreign_patterns.json"`
	AssetDir    string `env:"PATTERNS_ASSET_DIR" envDefault:"public"`
	LogFile     string `env:"PATTERNS_LOG_FILE"`
	LogLevel    string `env:"PATTERNS_LOG_LEVEL" envDefault:"info"`

	// Briefings are enabled only when an API key is present.
	GeminiAPIKey    string        `env:"GEMINI_API_KEY"`
	BriefingModel   string        `env:"PATTERNS_BRIEFING_MODEL" envDefault:"gemini-2.5-flash"`
	BriefingTimeout time.Duration `env:"PATTERNS_BRIEFING_TIMEOUT" envDefault:"30s"`
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	if cfg.BriefingTimeout <= 0 {
		return nil, fmt.Errorf("PATTERNS_BRIEFING_TIMEOUT must be positive, got %s", cfg.BriefingTimeout)
	}
	return &cfg, nil
}

// BriefingsEnabled reports whether a Gemini key was supplied.
func (c *Config) BriefingsEnabled() bool {
	return c.GeminiAPIKey != ""
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("PATTERNS_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}
