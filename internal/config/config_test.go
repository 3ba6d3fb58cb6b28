package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/test")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.False(t, cfg.IsProduction)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 2, cfg.CooldownDays)
	assert.Equal(t, 30, cfg.AvailabilityRatePerMin)
	assert.Equal(t, "court.events", cfg.NotifyExchange)
	assert.Empty(t, cfg.RabbitURL)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("BOOKING_COOLDOWN_DAYS", "3")
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "1h")
	t.Setenv("NOTIFY_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction)
	assert.Equal(t, 3, cfg.CooldownDays)
	assert.Equal(t, time.Hour, cfg.JWTAccessTokenTTL)
	assert.Equal(t, 2*time.Second, cfg.NotifyTimeout)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing dsn", env: map[string]string{"DB_DSN": "", "JWT_SECRET": "s"}},
		{name: "missing secret", env: map[string]string{"DB_DSN": "x", "JWT_SECRET": ""}},
		{name: "bad cooldown", env: map[string]string{"DB_DSN": "x", "JWT_SECRET": "s", "BOOKING_COOLDOWN_DAYS": "two"}},
		{name: "negative cooldown", env: map[string]string{"DB_DSN": "x", "JWT_SECRET": "s", "BOOKING_COOLDOWN_DAYS": "-1"}},
		{name: "bad ttl", env: map[string]string{"DB_DSN": "x", "JWT_SECRET": "s", "JWT_ACCESS_TOKEN_TTL": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
