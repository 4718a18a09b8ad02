package config

import (
	"os"
	"time"
)

type Config struct {
	DatabaseURL string
	HTTPAddr    string

	FetchInterval time.Duration
	FetchTimeout  time.Duration
	UserAgent     string

	MaxOpenConns int
	MaxIdleConns int
}

func Load() Config {
	return Config{
		DatabaseURL:   getenv("DATABASE_URL", ""),
		HTTPAddr:      getenv("HTTP_ADDR", ":8055"),
		FetchInterval: parseDurationEnv("FETCH_INTERVAL", 5*time.Minute),
		FetchTimeout:  parseDurationEnv("FETCH_TIMEOUT", 30*time.Second),
		UserAgent:     getenv("USER_AGENT", "albatross/1.0"),
		MaxOpenConns:  10,
		MaxIdleConns:  5,
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
