package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "development", cfg.App.Env)
	require.False(t, cfg.App.Production())
	require.Equal(t, 90, cfg.Auth.CookieExpiresDays)
	require.Equal(t, 10*time.Minute, cfg.Auth.ResetTTL())
	require.Equal(t, 12, cfg.Auth.BcryptCost)
	require.Equal(t, 100, cfg.RateLimit.Max)
	require.Equal(t, time.Hour, cfg.RateLimit.Window())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("JWT_TTL_MINUTES", "30")
	t.Setenv("AUTH_PASSWORD_RESET_TTL_MINUTES", "5")

	cfg, err := Load()
	require.NoError(t, err)

	require.True(t, cfg.App.Production())
	require.Equal(t, "prod-secret", cfg.Auth.JWTSecret)
	require.Equal(t, 30*time.Minute, cfg.Auth.SessionTTL())
	require.Equal(t, 5*time.Minute, cfg.Auth.ResetTTL())
}

func TestInvalidIntFallsBack(t *testing.T) {
	t.Setenv("JWT_TTL_MINUTES", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 90*24*60, cfg.Auth.SessionTTLMinutes)
}
