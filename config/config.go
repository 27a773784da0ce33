package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Instrument
	Symbol string

	// Provider
	ProviderBaseURL string
	FetchTimeout    time.Duration

	// Infrastructure
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	MetricsAddr   string
	APIAddr       string

	// Scheduler
	UpdateInterval time.Duration

	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Symbol: getEnv("NIFTY_SYMBOL", "^NSEI"),

		ProviderBaseURL: getEnv("PROVIDER_BASE_URL", "https://query1.finance.yahoo.com"),
		FetchTimeout:    getDuration("FETCH_TIMEOUT_SEC", 30*time.Second),

		SQLitePath:    getEnv("SQLITE_PATH", "data/nifty50_data.db"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
		APIAddr:       getEnv("API_ADDR", ":5000"),

		UpdateInterval: getDuration("UPDATE_INTERVAL_SEC", 5*time.Minute),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("ignoring invalid duration env var", "key", key, "value", v)
		return fallback
	}
	return time.Duration(n) * time.Second
}
