// Package config provides environment-based configuration.
//
// Loads from .env file (godotenv), maps to Config struct via go-simpler/env struct tags.
// Validates the timing knobs so the idle state machine cannot be configured into a corner.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// ActivityDebounce bounds storage writes and timer churn under rapid
	// input: at most one recorded activity per window.
	ActivityDebounce time.Duration `env:"ACTIVITY_DEBOUNCE" default:"250ms"`

	// IdleTimeout is how long without qualifying input before the live-update
	// channel is dropped.
	IdleTimeout time.Duration `env:"IDLE_TIMEOUT" default:"10m"`

	// MenuRefreshDelay delays the start-up updateAppMenu broadcast so the
	// menu consumer is listening before the first state lands.
	MenuRefreshDelay time.Duration `env:"MENU_REFRESH_DELAY" default:"1s"`

	FingerprintHelpURI string `env:"FINGERPRINT_HELP_URI" default:"https://help.bitwarden.com/article/fingerprint-phrase/"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.ActivityDebounce <= 0 {
		return fmt.Errorf("ACTIVITY_DEBOUNCE must be positive, got %v", cfg.ActivityDebounce)
	}
	if cfg.IdleTimeout <= 0 {
		return fmt.Errorf("IDLE_TIMEOUT must be positive, got %v", cfg.IdleTimeout)
	}
	if cfg.IdleTimeout <= cfg.ActivityDebounce {
		return fmt.Errorf("IDLE_TIMEOUT (%v) must exceed ACTIVITY_DEBOUNCE (%v)", cfg.IdleTimeout, cfg.ActivityDebounce)
	}
	if cfg.MenuRefreshDelay < 0 {
		return fmt.Errorf("MENU_REFRESH_DELAY must not be negative, got %v", cfg.MenuRefreshDelay)
	}
	return nil
}
