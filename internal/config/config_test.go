package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "chat_history.db", cfg.SQLitePath)
	assert.Equal(t, ProviderOpenRouter, cfg.Provider)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.OpenRouterURL)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 0, cfg.HistoryWindow)
	assert.Equal(t, DefaultOpenRouterModel, cfg.ModelName())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadPostgresAnthropic(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/stanbot")
	t.Setenv("GENERATION_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, DefaultAnthropicModel, cfg.ModelName())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "postgres without url",
			cfg:     Config{StoreDriver: DriverPostgres, Provider: ProviderOpenRouter, OpenRouterKey: "k"},
			wantErr: "DATABASE_URL is required",
		},
		{
			name:    "unknown driver",
			cfg:     Config{StoreDriver: "mysql", Provider: ProviderOpenRouter, OpenRouterKey: "k"},
			wantErr: `unknown STORE_DRIVER "mysql"`,
		},
		{
			name:    "openrouter without key",
			cfg:     Config{StoreDriver: DriverSQLite, SQLitePath: "x.db", Provider: ProviderOpenRouter},
			wantErr: "OPENROUTER_API_KEY is required",
		},
		{
			name:    "anthropic without key",
			cfg:     Config{StoreDriver: DriverSQLite, SQLitePath: "x.db", Provider: ProviderAnthropic},
			wantErr: "ANTHROPIC_API_KEY is required",
		},
		{
			name:    "unknown provider",
			cfg:     Config{StoreDriver: DriverSQLite, SQLitePath: "x.db", Provider: "gemini"},
			wantErr: `unknown GENERATION_PROVIDER "gemini"`,
		},
		{
			name:    "negative window",
			cfg:     Config{StoreDriver: DriverSQLite, SQLitePath: "x.db", Provider: ProviderOpenRouter, OpenRouterKey: "k", HistoryWindow: -1},
			wantErr: "HISTORY_WINDOW must not be negative",
		},
		{
			name: "valid",
			cfg:  Config{StoreDriver: DriverSQLite, SQLitePath: "x.db", Provider: ProviderOpenRouter, OpenRouterKey: "k"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestModelNameOverride(t *testing.T) {
	cfg := Config{Provider: ProviderAnthropic, Model: "claude-custom"}
	assert.Equal(t, "claude-custom", cfg.ModelName())
}
