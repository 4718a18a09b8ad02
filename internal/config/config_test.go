package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("FETCH_INTERVAL", "")
	t.Setenv("FETCH_TIMEOUT", "")
	t.Setenv("USER_AGENT", "")

	cfg := Load()

	assert.Equal(t, "", cfg.DatabaseURL)
	assert.Equal(t, ":8055", cfg.HTTPAddr)
	assert.Equal(t, 5*time.Minute, cfg.FetchInterval)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "albatross/1.0", cfg.UserAgent)
	assert.Equal(t, 10, cfg.MaxOpenConns)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/albatross")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("FETCH_INTERVAL", "2m")
	t.Setenv("FETCH_TIMEOUT", "5s")

	cfg := Load()

	assert.Equal(t, "postgres://localhost/albatross", cfg.DatabaseURL)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, 2*time.Minute, cfg.FetchInterval)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
}

func TestLoadIgnoresMalformedDurations(t *testing.T) {
	t.Setenv("FETCH_INTERVAL", "five minutes")

	cfg := Load()

	assert.Equal(t, 5*time.Minute, cfg.FetchInterval)
}
