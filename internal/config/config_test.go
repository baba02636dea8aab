package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("jwt:\n  secret: s3cret\n"))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.API.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.Subscription.TrialPeriod)
	assert.Equal(t, 30*24*time.Hour, cfg.Subscription.ApprovalGrant)
	assert.Equal(t, 30*24*time.Hour, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, "token", cfg.JWT.CookieName)
	assert.Equal(t, "59 23 * * *", cfg.Report.Schedule)
	assert.Equal(t, "memory", cfg.RateLimit.Store)
	assert.False(t, cfg.IsDevelopment())
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DATABASE_URL", "postgres://localhost/flownest")
	t.Setenv("APP_ENV", "development")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Parse([]byte("jwt:\n  secret: from-file\napi:\n  port: 8080\n"))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "postgres://localhost/flownest", cfg.Database.DSN)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing secret", "api:\n  port: 1\n"},
		{"bad limiter store", "jwt:\n  secret: x\nratelimit:\n  store: disk\n"},
		{"redis store without addr", "jwt:\n  secret: x\nratelimit:\n  store: redis\n"},
		{"bad timezone", "jwt:\n  secret: x\nreport:\n  timezone: Mars/Olympus\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
