package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the application.
type Config struct {
	Port string
	Env  string

	DatabaseDSN string
	RedisAddr   string
	RedisDB     int

	JWTSecret string

	// Telegram advisor alerts are optional; empty token disables them.
	TelegramBotToken string
	TelegramChatID   int64
}

// Load reads configuration from environment variables.
// In development a .env file is loaded if present; in production the
// database and JWT secret are required.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		DatabaseDSN:      os.Getenv("DATABASE_DSN"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			cfg.TelegramChatID = id
		}
	}
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if db, err := strconv.Atoi(raw); err == nil {
			cfg.RedisDB = db
		}
	}

	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "host=localhost user=voyago password=voyago dbname=voyago port=5432 sslmode=disable"
	}
	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			panic("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-only-secret"
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
