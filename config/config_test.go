package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "budget_alerts", cfg.AMQPQueue)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:expenses.db")
	t.Setenv("JWT_SECRET", "a-very-long-signing-secret")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://app.example.com")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.CORSOrigins)
	assert.True(t, cfg.Logger().Enabled(t.Context(), slog.LevelDebug))
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := &Config{
		Port:         "99999",
		DBDriver:     "mysql",
		DatabaseURL:  "",
		JWTSecret:    "short",
		TokenTTL:     time.Second,
		BcryptCost:   1,
		AMQPURL:      "http://rabbit",
		AMQPQueue:    "q",
		NotifyBuffer: 0,
		LogLevel:     "loud",
		LogFormat:    "xml",
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"invalid port 99999",
		"invalid DB_DRIVER 'mysql'",
		"DATABASE_URL can't be empty",
		"JWT_SECRET must be at least 16 characters",
		"invalid TOKEN_TTL",
		"invalid BCRYPT_COST 1",
		"invalid AMQP_URL scheme 'http'",
		"invalid NOTIFY_BUFFER 0",
		"invalid LOG_LEVEL 'loud'",
		"invalid LOG_FORMAT 'xml'",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateReportsUnparsableValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef")
	t.Setenv("BCRYPT_COST", "abc")
	t.Setenv("NOTIFY_BUFFER", "x")
	t.Setenv("TOKEN_TTL", "1day")

	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"invalid BCRYPT_COST 'abc'",
		"invalid NOTIFY_BUFFER 'x'",
		"invalid TOKEN_TTL '1day'",
	} {
		assert.Contains(t, err.Error(), want)
	}
}
