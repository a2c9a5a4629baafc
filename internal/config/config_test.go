package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.App.Env)
	assert.Equal(t, 10*1024, cfg.App.BodyLimitBytes)
	assert.Equal(t, 90*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 10*time.Minute, cfg.Auth.PasswordResetTTL)
	assert.Equal(t, time.Second, cfg.Auth.PasswordChangeSkew)
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, time.Hour, cfg.RateLimit.Window)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "a-real-secret")
	t.Setenv("JWT_EXPIRES_IN", "30d")
	t.Setenv("JWT_COOKIE_EXPIRES_IN", "7")
	t.Setenv("RATE_LIMIT_WINDOW", "15m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.CookieTTL())
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("APP_ENV", "staging")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		val  string
		want time.Duration
	}{
		{"", time.Minute},
		{"90d", 90 * 24 * time.Hour},
		{"2h", 2 * time.Hour},
		{"xd", time.Minute},
		{"garbage", time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.val, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.val)
			assert.Equal(t, tt.want, getEnvAsDuration("TEST_DURATION", time.Minute))
		})
	}
}

func TestAppConfig_RequestTimeout(t *testing.T) {
	assert.Equal(t, time.Duration(0), AppConfig{}.RequestTimeout())
	assert.Equal(t, 5*time.Second, AppConfig{RequestTimeoutSeconds: 5}.RequestTimeout())
	assert.Equal(t, "0.0.0.0:3000", AppConfig{Host: "0.0.0.0", Port: "3000"}.Addr())
}
