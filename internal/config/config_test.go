package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cdr.dev/slog/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/forgeheat/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, config.BackendRedis, cfg.CacheBackend)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "./data/forgeheat.db", cfg.DBPath)
	assert.Equal(t, 30*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 8, cfg.MaxConcurrentProviders)
	assert.Equal(t, 100, cfg.GitLabMaxPages)
	assert.Equal(t, "https://api.github.com/", cfg.GitHubAPIURL)
	assert.Empty(t, cfg.JWTSecret)
	assert.Equal(t, 60, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RateWindow)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoad_EnvFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(
		"CACHE_BACKEND=sqlite\nREDIS_ADDR=redis:6380\nGITLAB_MAX_PAGES=5\nTIMEZONE=UTC\n"), 0o600))

	t.Setenv("GITLAB_MAX_PAGES", "7")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("GITHUB_API_URL", "https://ghe.example.com/api/")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		for _, key := range []string{"CACHE_BACKEND", "REDIS_ADDR", "TIMEZONE"} {
			_ = os.Unsetenv(key)
		}
	})

	assert.Equal(t, config.BackendSQLite, cfg.CacheBackend)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, 7, cfg.GitLabMaxPages)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, "https://ghe.example.com/api/", cfg.GitHubAPIURL)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"backend", "CACHE_BACKEND", "memcached"},
		{"log level", "LOG_LEVEL", "loud"},
		{"timezone", "TIMEZONE", "Mars/Olympus"},
		{"ttl", "CACHE_TTL", "0s"},
		{"timeout", "PROVIDER_TIMEOUT", "-1s"},
		{"concurrency", "MAX_CONCURRENT_PROVIDERS", "0"},
		{"pages", "GITLAB_MAX_PAGES", "0"},
		{"not a duration", "RATE_WINDOW", "soon"},
		{"window", "RATE_WINDOW", "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
		})
	}
}
