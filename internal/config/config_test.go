package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8080", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.RequestTimeout())
	assert.Equal(t, 120*time.Second, cfg.API.UploadTimeout())
	assert.Equal(t, 10*time.Minute, cfg.API.CSRFRotateInterval())
	assert.Equal(t, 14*time.Minute, cfg.API.RefreshInterval())

	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL())
	assert.True(t, cfg.Session.WatchFile)
	assert.NotEmpty(t, cfg.Session.FilePath)

	assert.Equal(t, "127.0.0.1:8080", cfg.Stub.Addr())
	assert.Equal(t, 30*time.Second, cfg.Stub.RequestTimeout())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORTAL_API_BASE_URL", "https://portal.example.com/api")
	t.Setenv("PORTAL_HTTP_TIMEOUT_SECONDS", "7")
	t.Setenv("PORTAL_SESSION_WATCH", "false")
	t.Setenv("PORTAL_CACHE_BACKEND", "redis")
	t.Setenv("PORTAL_CACHE_REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://portal.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 7*time.Second, cfg.API.RequestTimeout())
	assert.False(t, cfg.Session.WatchFile)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 3, cfg.Cache.RedisDB)
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("PORTAL_CACHE_REDIS_DB", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestMalformedIntsFallBack(t *testing.T) {
	t.Setenv("PORTAL_HTTP_TIMEOUT_SECONDS", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.API.RequestTimeout())
}
