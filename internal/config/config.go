// Package config loads application configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the run command needs to wire the process.
type Config struct {
	TelegramToken string
	PostgresDSN   string
	RedisAddr     string // optional; empty selects the in-memory store
	Port          string
	LogLevel      string
}

// Load reads the .env file (the given path, or ./.env when empty) and the
// environment. A missing .env file is fine; missing required variables
// are not.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		Port:          getEnv("PORT", "3000"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	if cfg.TelegramToken == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN is not set")
	}
	if cfg.PostgresDSN == "" {
		return nil, errors.New("POSTGRES_DSN is not set")
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}
