package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration, loaded once at startup: a
// single exchange transport endpoint, sink output paths, and optional
// Postgres/Redis endpoints that degrade gracefully when unset.
type Config struct {
	TradingWSURL string

	// Sink output directories.
	SinkDir string

	// Database configuration (optional: empty DatabaseHost disables the
	// durable store).
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	// Redis configuration (optional: empty RedisHost disables the
	// snapshot cache).
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// HTTP configuration.
	APIAddr     string
	MetricsAddr string
}

// LoadFromEnv loads configuration from environment variables, falling
// back to an optional .env file.
func LoadFromEnv() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		TradingWSURL: getEnvOrDefault("EXCHANGE_WS_URL", "wss://ws.okx.com:8443/ws/v5/public"),
		SinkDir:      getEnvOrDefault("SINK_DIR", "./data"),

		DatabaseHost:     getEnvOrDefault("DB_HOST", ""),
		DatabasePort:     getEnvOrDefault("DB_PORT", "5432"),
		DatabaseName:     getEnvOrDefault("DB_NAME", "cryptoengine"),
		DatabaseUser:     getEnvOrDefault("DB_USER", "cryptoengine"),
		DatabasePassword: getEnvOrDefault("DB_PASSWORD", ""),

		RedisHost:     getEnvOrDefault("REDIS_HOST", ""),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		APIAddr:     getEnvOrDefault("API_ADDR", ":8080"),
		MetricsAddr: getEnvOrDefault("METRICS_ADDR", ":9090"),
	}
}

// getEnvOrDefault gets environment variable or returns default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

