package config_test

import (
	"testing"
	"time"

	"orderdesk/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "DATABASE_URL", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER",
		"POSTGRES_PASSWORD", "POSTGRES_DB", "POSTGRES_SSLMODE", "LOG_LEVEL",
		"RABBITMQ_URL", "RABBITMQ_EXCHANGE", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 5432, cfg.PostgresPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "orders_topic", cfg.RabbitMQExchange)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=orderdesk sslmode=disable", cfg.DSN())
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("PORT", ":9090")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/orders")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "postgres://u:p@db:5432/orders", cfg.DSN())
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_InvalidNumbers(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	t.Setenv("POSTGRES_PORT", "abc")
	_, err := config.Load()
	assert.ErrorContains(t, err, "POSTGRES_PORT must be number")

	t.Setenv("POSTGRES_PORT", "")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	_, err = config.Load()
	assert.ErrorContains(t, err, "SHUTDOWN_TIMEOUT must be duration")
}
