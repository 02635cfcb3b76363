// Package config reads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service configuration.
type Config struct {
	Port         string
	DatabaseURL  string
	DBPath       string
	RedisURL     string
	RouteLockTTL time.Duration
	ORSAPIKey    string
	SeedPath     string
	SeedOnStart  bool
}

// Load reads configuration from environment variables with defaults for local runs.
// A .env file, if present, should already have been loaded by the caller.
func Load() *Config {
	return &Config{
		Port:         Get("PORT", "8080"),
		DatabaseURL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBPath:       Get("DB_PATH", "data/trashperson.db"),
		RedisURL:     strings.TrimSpace(os.Getenv("REDIS_URL")),
		RouteLockTTL: getSeconds("ROUTE_LOCK_TTL_SECONDS", 30),
		ORSAPIKey:    strings.TrimSpace(os.Getenv("ORS_API_KEY")),
		SeedPath:     Get("SEED_PATH", "data/seeds/austin_route.json"),
		SeedOnStart:  getBool("SEED_ON_START", false),
	}
}

// UsePostgres reports whether DATABASE_URL selects PostgreSQL over SQLite.
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getSeconds(key string, fallback int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(fallback) * time.Second
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
