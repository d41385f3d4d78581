package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string
	LogLevel    string

	// Database
	DatabaseURL string

	// Redis (message bus)
	RedisURL string

	// HTTP server
	Port string

	// Ops API
	JWTSecret string

	// WebSocket gateway
	WSSendBufferSize int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/gamehall?sslmode=disable"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		Port: getEnv("APP_PORT", "8080"),

		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),

		WSSendBufferSize: getEnvInt("WS_SEND_BUFFER_SIZE", 64),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
