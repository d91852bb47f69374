package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "5175", cfg.Port)
	assert.Equal(t, "./data/app.db", cfg.DBPath)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.RedisAddr)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 14*24*time.Hour, cfg.JWTTTL())
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("GUESS_RATE_LIMIT", "5")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 5, cfg.GuessRateLimit)
}

func TestParse_BadValue(t *testing.T) {
	t.Setenv("JWT_EXPIRES_DAYS", "soon")
	_, err := Parse()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	_, err := Parse()
	require.Error(t, err, "default JWT secret must be refused in production")

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := Parse()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())

	t.Setenv("GUESS_RATE_LIMIT", "0")
	_, err = Parse()
	assert.Error(t, err)
}
