package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, DevelopmentSecret, cfg.JWTSecretKey)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "cod_session", cfg.CookieName)
	assert.Equal(t, "/", cfg.CookiePath)
	assert.Equal(t, "Lax", cfg.CookieSameSite)
	assert.Equal(t, 7200, cfg.CookieMaxAge())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadConfig()

	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrSecretRequired)
}

func TestLoadConfig_ProductionWithSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "a-real-secret-with-enough-entropy-000")
	t.Setenv("SESSION_COOKIE_SAME_SITE", "strict")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "Strict", cfg.CookieSameSite)
	assert.Equal(t, "a-real-secret-with-enough-entropy-000", cfg.JWTSecretKey)
}

func TestValidate_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		cfg    Config
		expect error
	}{
		{"staging without secret", Config{Environment: "staging", SessionTTL: time.Hour, CookieSameSite: "Lax"}, ErrSecretRequired},
		{"zero ttl", Config{Environment: "test", JWTSecretKey: "s", CookieSameSite: "Lax"}, ErrInvalidTTL},
		{"bad same site", Config{Environment: "test", JWTSecretKey: "s", SessionTTL: time.Hour, CookieSameSite: "sometimes"}, ErrInvalidSameSite},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			assert.ErrorIs(t, cfg.Validate(), tc.expect)
		})
	}
}
