package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	for _, k := range []string{"PORT", "DATABASE_URL", "STORAGE", "JWT_SECRET", "JWT_EXPIRY", "REQUEST_TIMEOUT",
		"ADMISSION_TIMEOUT", "NOTIFY_TIMEOUT", "NOTIFY_MAX_INFLIGHT", "EMAIL_PROVIDER", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.Storage)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 5*time.Second, cfg.AdmissionTimeout)
	assert.Equal(t, int64(16), cfg.NotifyMaxInflight)
	assert.Equal(t, "log", cfg.Email.Provider)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("STORAGE", "Memory")
	t.Setenv("JWT_EXPIRY", "1h")
	t.Setenv("NOTIFY_MAX_INFLIGHT", "4")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("EMAIL_PROVIDER", "ses")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.Equal(t, int64(4), cfg.NotifyMaxInflight)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "ses", cfg.Email.Provider)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown storage", map[string]string{"STORAGE": "sqlite"}},
		{"bad duration", map[string]string{"ADMISSION_TIMEOUT": "soon"}},
		{"negative duration", map[string]string{"NOTIFY_TIMEOUT": "-1s"}},
		{"zero inflight", map[string]string{"NOTIFY_MAX_INFLIGHT": "0"}},
		{"missing secret in production", map[string]string{"GO_ENV": "production", "JWT_SECRET": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GO_ENV", "test")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}
