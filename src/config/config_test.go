package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"MONGODB_CONNECTION_STRING", "MONGODB_DATABASE_NAME", "RABBITMQ_HOSTNAME",
	"RABBITMQ_EXCHANGE", "RABBITMQ_QUEUENAME", "REDIS_ADDR", "OTEL_EXPORTER_ENDPOINT",
	"SERVICE_NAME", "PORT", "RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW", "SEED_CATALOG", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Empty(t, cfg.MongoDBConnectionString)
	assert.Equal(t, "clothing-store", cfg.MongoDBDatabaseName)
	assert.Equal(t, "store_events", cfg.RabbitMQExchange)
	assert.Equal(t, "store_events_queue", cfg.RabbitMQQueueName)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.False(t, cfg.SeedCatalog)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGODB_CONNECTION_STRING", "mongodb://localhost:27017")
	t.Setenv("MONGODB_DATABASE_NAME", "shop")
	t.Setenv("PORT", "9090")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("SEED_CATALOG", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDBConnectionString)
	assert.Equal(t, "shop", cfg.MongoDBDatabaseName)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5, cfg.RateLimitMax)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.True(t, cfg.SeedCatalog)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{key: "RATE_LIMIT_MAX", value: "many"},
		{key: "RATE_LIMIT_MAX", value: "0"},
		{key: "RATE_LIMIT_WINDOW", value: "soon"},
		{key: "SEED_CATALOG", value: "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
