package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "https://www.bing.com/search", cfg.Scraper.BaseURL)
	assert.Equal(t, "Bing Weather", cfg.Weather.Source)
	assert.Equal(t, "India", cfg.Weather.DefaultCountry)
	assert.Equal(t, 7, cfg.Weather.ForecastDays)
	assert.Equal(t, 3, cfg.Scraper.Retries)
	assert.Contains(t, cfg.Scraper.UserAgent, "Mozilla")
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9090
weather:
  default_country: Nepal
  cache_ttl: 60
  prefetch:
    - city: Kathmandu
    - city: Mumbai
      state: Maharashtra
      country: India
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("WXP_LOGGING_LEVEL", "debug")
	t.Setenv("WXP_WEATHER_CACHE_TTL", "15")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "Nepal", cfg.Weather.DefaultCountry)
	assert.Equal(t, 15, cfg.Weather.CacheTTL)
	assert.Equal(t, "debug", cfg.Logging.Level)

	require.Len(t, cfg.Weather.Prefetch, 2)
	assert.Equal(t, "Kathmandu", cfg.Weather.Prefetch[0].City)
	assert.Equal(t, LocationConfig{City: "Mumbai", State: "Maharashtra", Country: "India"}, cfg.Weather.Prefetch[1])
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGetConfigFallsBackToDefaults(t *testing.T) {
	cfg := GetConfig()
	require.NotNil(t, cfg)

	custom := NewDefaultConfig()
	custom.Server.Port = 1234
	SetConfig(custom)
	assert.Equal(t, 1234, GetConfig().Server.Port)
}
