package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults verifies that default values are used when env vars are missing.
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "log", cfg.Notifications.Sender)
	assert.Equal(t, 256, cfg.Notifications.QueueSize)
	assert.Equal(t, 4, cfg.Notifications.Workers)
	assert.Equal(t, 10*time.Second, cfg.Notifications.SendTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Carrier.CacheTTL)
	assert.False(t, cfg.Proxy.Settings().HasProxy())
}

// TestLoad_EnvVars verifies that environment variables override defaults.
func TestLoad_EnvVars(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LEDGER_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("NOTIFY_SENDER", "kafka")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("CARRIER_CACHE_TTL", "90s")
	t.Setenv("PROXY_ENABLED", "true")
	t.Setenv("PROXY_HOSTNAME", "proxy.internal")
	t.Setenv("PROXY_PORT", "3128")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Storage.RedisURL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Notifications.KafkaBrokers)
	assert.Equal(t, 90*time.Second, cfg.Carrier.CacheTTL)
	assert.Equal(t, "http://proxy.internal:3128", cfg.Proxy.Settings().HostPort())
}

// TestLoad_File verifies that values are loaded from a .env file.
func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
APP_ENV=staging
LOG_LEVEL=warn
SERVER_PORT=7070
LEDGER_BACKEND=postgres
DATABASE_DSN=host=localhost user=tracker dbname=tracker sslmode=disable
`)
	require.NoError(t, os.WriteFile(dir+"/.env", content, 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 7070, cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.Storage.Backend)
	assert.Contains(t, cfg.Storage.DatabaseDSN, "dbname=tracker")
}

// TestLoad_ValidationFailure verifies cross-field rules.
func TestLoad_ValidationFailure(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "RedisBackendWithoutURL",
			env:  map[string]string{"LEDGER_BACKEND": "redis"},
			want: "REDIS_URL is required",
		},
		{
			name: "PostgresBackendWithoutDSN",
			env:  map[string]string{"LEDGER_BACKEND": "postgres"},
			want: "DATABASE_DSN is required",
		},
		{
			name: "UnknownBackend",
			env:  map[string]string{"LEDGER_BACKEND": "mongo"},
			want: "LEDGER_BACKEND must be one of",
		},
		{
			name: "WebhookWithoutURL",
			env:  map[string]string{"NOTIFY_SENDER": "webhook"},
			want: "NOTIFY_WEBHOOK_URL is required",
		},
		{
			name: "KafkaWithoutBrokers",
			env:  map[string]string{"NOTIFY_SENDER": "kafka"},
			want: "KAFKA_BROKERS is required",
		},
		{
			name: "ProxyWithoutHost",
			env:  map[string]string{"PROXY_ENABLED": "true"},
			want: "PROXY_HOSTNAME is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load(t.TempDir())

			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
