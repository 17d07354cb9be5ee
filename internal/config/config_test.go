package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultEnv, cfg.Env)
	assert.Equal(t, DefaultRecentWindowLimit, cfg.RecentWindowLimit)
	assert.Equal(t, DefaultRateLimitRPM, cfg.RateLimitRPM)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("RECENT_WINDOW_LIMIT", "25")
	t.Setenv("DATABASE_URL", "postgres://localhost/frauds")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 25, cfg.RecentWindowLimit)
	assert.Equal(t, "postgres://localhost/frauds", cfg.DatabaseURL)
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	t.Setenv("RECENT_WINDOW_LIMIT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultRecentWindowLimit, cfg.RecentWindowLimit)
}

func TestValidateRejectsNonPositiveLimits(t *testing.T) {
	cfg := &Config{RecentWindowLimit: 0, RateLimitRPM: 60}
	assert.Error(t, cfg.Validate())

	cfg = &Config{RecentWindowLimit: 10, RateLimitRPM: -1}
	assert.Error(t, cfg.Validate())

	cfg = &Config{RecentWindowLimit: 10, RateLimitRPM: 60}
	assert.NoError(t, cfg.Validate())
}
