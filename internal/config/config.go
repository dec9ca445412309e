package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port   string
	AppEnv string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	ClientURL string

	FailureWebhookURL string
	BackendSecret     string
	WebhookTimeout    time.Duration

	SeedDemoStudent bool
}

func Load() *Config {
	return &Config{
		Port:   getenv("PORT", "3001"),
		AppEnv: getenv("APP_ENV", "development"),

		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: getenv("DB_PASSWORD", "postgres"),
		DBName:     getenv("DB_NAME", "sparkworks"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),

		ClientURL: getenv("CLIENT_URL", "*"),

		FailureWebhookURL: getenv("N8N_FAILURE_WEBHOOK_URL", ""),
		BackendSecret:     getenv("BACKEND_SECRET", ""),
		WebhookTimeout:    getenvSeconds("WEBHOOK_TIMEOUT_SECONDS", 5),

		SeedDemoStudent: getenvBool("SEED_DEMO_STUDENT", true),
	}
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getenvSeconds(key string, fallback int) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(fallback) * time.Second
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return time.Duration(fallback) * time.Second
	}
	return time.Duration(n) * time.Second
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
