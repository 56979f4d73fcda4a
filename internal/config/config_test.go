package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", testSecret)
	t.Setenv("FIPE_BASE_URL", "")
	t.Setenv("FIPE_TIMEOUT", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("CACHE_BACKEND", "")
	t.Setenv("API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultFipeBaseURL, cfg.FipeBaseURL)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.FipeTimeout)
	assert.Equal(t, "memory", cfg.CacheBackend)
	assert.Equal(t, "", cfg.FipeAPIKey)
	assert.Equal(t, 3, cfg.HistoryLimit)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", testSecret)
	t.Setenv("FIPE_BASE_URL", "http://localhost:9999/fipe/")
	t.Setenv("API_KEY", "tok")
	t.Setenv("CACHE_BACKEND", "REDIS")
	t.Setenv("FIPE_RATE_LIMIT", "2.5")
	t.Setenv("RATE_LIMIT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/fipe", cfg.FipeBaseURL)
	assert.Equal(t, "tok", cfg.FipeAPIKey)
	assert.Equal(t, "redis", cfg.CacheBackend)
	assert.Equal(t, 2.5, cfg.FipeRateLimit)
	assert.Equal(t, 100, cfg.RateLimit)
}

func TestValidateAggregatesErrors(t *testing.T) {
	cfg := &Config{
		FipeBaseURL:     "parallelum.com.br",
		CacheBackend:    "memcached",
		RateLimit:       1,
		RateLimitWindow: time.Second,
		HistoryLimit:    3,
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIPE_BASE_URL")
	assert.Contains(t, err.Error(), "CACHE_TTL")
	assert.Contains(t, err.Error(), "CACHE_BACKEND")
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
}
