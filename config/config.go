package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	APIBaseURL     string `env:"API_BASE_URL" envDefault:"http://localhost:8000/api" validate:"required,url"`
	HTTPTimeoutSec int    `env:"HTTP_TIMEOUT_SEC" envDefault:"15" validate:"min=1,max=120"`

	// TokenPath is the durable credential file shared by every process of
	// the app. Empty means <user config dir>/coursehub/token.
	TokenPath string `env:"TOKEN_PATH"`

	UIPort      string `env:"UI_PORT" envDefault:"3000" validate:"required"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.TokenPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		cfg.TokenPath = filepath.Join(dir, "coursehub", "token")
	}

	return cfg, nil
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
