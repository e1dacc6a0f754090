package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 250*time.Millisecond, cfg.ActivityDebounce)
	assert.Equal(t, 10*time.Minute, cfg.IdleTimeout)
	assert.Equal(t, time.Second, cfg.MenuRefreshDelay)
	assert.NotEmpty(t, cfg.FingerprintHelpURI)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ACTIVITY_DEBOUNCE", "100ms")
	t.Setenv("IDLE_TIMEOUT", "5m")
	t.Setenv("MENU_REFRESH_DELAY", "0s")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 100*time.Millisecond, cfg.ActivityDebounce)
	assert.Equal(t, 5*time.Minute, cfg.IdleTimeout)
	assert.Equal(t, time.Duration(0), cfg.MenuRefreshDelay)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_InvalidTimings(t *testing.T) {
	tests := []struct {
		name    string
		envKey  string
		envVal  string
		wantErr string
	}{
		{"zero debounce", "ACTIVITY_DEBOUNCE", "0s", "ACTIVITY_DEBOUNCE must be positive"},
		{"zero idle timeout", "IDLE_TIMEOUT", "0s", "IDLE_TIMEOUT must be positive"},
		{"idle timeout below debounce", "IDLE_TIMEOUT", "100ms", "must exceed ACTIVITY_DEBOUNCE"},
		{"negative menu delay", "MENU_REFRESH_DELAY", "-1s", "MENU_REFRESH_DELAY must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envVal)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
