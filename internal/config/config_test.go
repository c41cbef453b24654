package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("RTT_USERNAME", "")
	t.Setenv("RTT_PASSWORD", "")
	t.Setenv("TRANSPORT_API_APP_ID", "")
	t.Setenv("TRANSPORT_API_APP_KEY", "")
	t.Setenv("DEFAULT_RESULT_LIMIT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("HTTP_TIMEOUT", "")
}

func TestLoadFromEnvRequiresTelegramToken(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := LoadFromEnv()
	var configErr *ConfigurationError
	require.ErrorAs(t, err, &configErr)
	assert.Contains(t, configErr.Message, "TELEGRAM_BOT_TOKEN")
}

func TestLoadFromEnvRequiresAtLeastOneProvider(t *testing.T) {
	setBaseEnv(t)

	_, err := LoadFromEnv()
	var configErr *ConfigurationError
	require.ErrorAs(t, err, &configErr)
	assert.Contains(t, configErr.Message, "at least one rail data provider")
}

func TestLoadFromEnvPartialRTTCredentialsIgnored(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("RTT_USERNAME", "user")
	// Password missing: RTT must not be configured.
	t.Setenv("TRANSPORT_API_APP_ID", "id")
	t.Setenv("TRANSPORT_API_APP_KEY", "key")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Nil(t, cfg.RTT)
	require.NotNil(t, cfg.TransportAPI)
	assert.Equal(t, "id", cfg.TransportAPI.AppID)
}

func TestLoadFromEnvDefaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("RTT_USERNAME", "user")
	t.Setenv("RTT_PASSWORD", "pass")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	require.NotNil(t, cfg.RTT)
	assert.Equal(t, "https://api.rtt.io", cfg.RTT.BaseURL)
	assert.Nil(t, cfg.TransportAPI)
	assert.Equal(t, 5, cfg.DefaultLimit)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("RTT_USERNAME", "user")
	t.Setenv("RTT_PASSWORD", "pass")
	t.Setenv("RTT_BASE_URL", "https://rtt.example.test")
	t.Setenv("DEFAULT_RESULT_LIMIT", "8")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("ENV", "development")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://rtt.example.test", cfg.RTT.BaseURL)
	assert.Equal(t, 8, cfg.DefaultLimit)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "development", cfg.Environment)
}

func TestWithLogLevelInvalidFallsBackToInfo(t *testing.T) {
	cfg := New(WithLogLevel("nonsense"))
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
}
