package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

type Config struct {
	MongoDBConnectionString string
	MongoDBDatabaseName     string
	RabbitMQHostName        string
	RabbitMQExchange        string
	RabbitMQQueueName       string
	RedisAddr               string
	OtelExporterEndpoint    string
	ServiceName             string
	LogLevel                string
	Port                    string
	RateLimitMax            int
	RateLimitWindow         time.Duration
	SeedCatalog             bool
}

func LoadConfig() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using environment variables only")
	}

	config := &Config{
		MongoDBConnectionString: os.Getenv("MONGODB_CONNECTION_STRING"),
		MongoDBDatabaseName:     os.Getenv("MONGODB_DATABASE_NAME"),
		RabbitMQHostName:        os.Getenv("RABBITMQ_HOSTNAME"),
		RabbitMQExchange:        os.Getenv("RABBITMQ_EXCHANGE"),
		RabbitMQQueueName:       os.Getenv("RABBITMQ_QUEUENAME"),
		RedisAddr:               os.Getenv("REDIS_ADDR"),
		OtelExporterEndpoint:    os.Getenv("OTEL_EXPORTER_ENDPOINT"),
		ServiceName:             os.Getenv("SERVICE_NAME"),
		LogLevel:                os.Getenv("LOG_LEVEL"),
		Port:                    os.Getenv("PORT"),
	}

	// Set default values if environment variables are not set
	if config.MongoDBDatabaseName == "" {
		config.MongoDBDatabaseName = "clothing-store"
	}
	if config.RabbitMQExchange == "" {
		config.RabbitMQExchange = "store_events"
	}
	if config.RabbitMQQueueName == "" {
		config.RabbitMQQueueName = "store_events_queue"
	}
	if config.ServiceName == "" {
		config.ServiceName = "clothing-store"
	}
	if config.Port == "" {
		config.Port = "8000"
	}

	if config.RateLimitMax, err = intFromEnv("RATE_LIMIT_MAX", 100); err != nil {
		return nil, err
	}
	if config.RateLimitWindow, err = durationFromEnv("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if config.SeedCatalog, err = boolFromEnv("SEED_CATALOG", false); err != nil {
		return nil, err
	}

	return config, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, errors.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return v, nil
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		return 0, errors.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return v, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.Wrapf(err, "parse %s", key)
	}
	return v, nil
}
