package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
)

type Config struct {
	// Storage
	StoreDriver string `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"chat_history.db"`
	DatabaseURL string `env:"DATABASE_URL"`

	// Generation
	Provider      string  `env:"GENERATION_PROVIDER" envDefault:"openrouter"`
	OpenRouterKey string  `env:"OPENROUTER_API_KEY"`
	OpenRouterURL string  `env:"OPENROUTER_API_URL" envDefault:"https://openrouter.ai/api/v1"`
	AnthropicKey  string  `env:"ANTHROPIC_API_KEY"`
	AnthropicURL  string  `env:"ANTHROPIC_API_URL"`
	Model         string  `env:"MODEL"`
	Temperature   float64 `env:"TEMPERATURE" envDefault:"0.7"`

	// Number of prior turns replayed per request, 0 replays everything.
	HistoryWindow int `env:"HISTORY_WINDOW" envDefault:"0"`

	// Server
	Port int `env:"PORT" envDefault:"3000"`

	// Telegram, disabled when the token is empty
	BotToken           string `env:"BOT_TOKEN"`
	DropPendingUpdates bool   `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks the rules that depend on more than one field.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	switch c.Provider {
	case ProviderOpenRouter:
		if c.OpenRouterKey == "" {
			errs = append(errs, errors.New("OPENROUTER_API_KEY is required for the openrouter provider"))
		}
	case ProviderAnthropic:
		if c.AnthropicKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required for the anthropic provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown GENERATION_PROVIDER %q", c.Provider))
	}

	if c.HistoryWindow < 0 {
		errs = append(errs, errors.New("HISTORY_WINDOW must not be negative"))
	}

	return errors.Join(errs...)
}

// ModelName returns the configured model or the provider's default.
func (c *Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	if c.Provider == ProviderAnthropic {
		return DefaultAnthropicModel
	}
	return DefaultOpenRouterModel
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
