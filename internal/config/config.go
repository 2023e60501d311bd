// Package config provides configuration management for Lineage.
// It loads settings from environment variables with the LINEAGE_ prefix
// and provides sensible defaults for all configuration options.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration settings for the Lineage application.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Security SecurityConfig
	Limits   LimitsConfig
	Persist  PersistConfig
	Archive  ArchiveConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    // Server port (default: 6470)
	Host string // Server host (default: 127.0.0.1)
}

// StorageConfig contains database and storage configuration.
type StorageConfig struct {
	StorageEngine string // Storage engine type: sqlite, postgres (default: sqlite)
	DataPath      string // Path to data directory (default: ./data)
	PostgresDSN   string // PostgreSQL connection string (used when engine is postgres)
	TreesConfig   string // Optional path to a YAML file declaring multiple trees
}

// SecurityConfig contains security and authentication settings.
type SecurityConfig struct {
	SecurityMode string  // Security mode: development, production (default: development)
	APIToken     string  // API authentication token
	RateLimit    float64 // Requests per second per server (default: 50)
	RateBurst    int     // Burst allowance (default: 100)
}

// LimitsConfig caps traversal work.
type LimitsConfig struct {
	MaxDepth int // Hard ceiling on traversal depth (default: 10)
	MaxNodes int // Maximum people visited per traversal (default: 10000)
	MaxEdges int // Maximum edges examined per traversal (default: 50000)
}

// PersistConfig tunes the async snapshot writer.
type PersistConfig struct {
	Debounce       time.Duration // Wait after a mutation before flushing (default: 2s)
	MaxFailures    int           // Consecutive failures before the breaker trips (default: 3)
	BreakerTimeout time.Duration // How long the breaker stays open (default: 30s)
}

// ArchiveConfig controls periodic snapshot archives of the default tree.
// Archiving is disabled unless Dir is set.
type ArchiveConfig struct {
	Dir      string        // Directory for archive files (default: disabled)
	Interval time.Duration // Time between automated archives (default: 1h)
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the LINEAGE_ prefix.
func LoadConfig() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("LINEAGE_PORT", 6470),
			Host: getEnv("LINEAGE_HOST", "127.0.0.1"),
		},
		Storage: StorageConfig{
			StorageEngine: getEnv("LINEAGE_STORAGE_ENGINE", "sqlite"),
			DataPath:      getEnv("LINEAGE_DATA_PATH", "./data"),
			PostgresDSN:   getEnv("LINEAGE_POSTGRES_DSN", ""),
			TreesConfig:   getEnv("LINEAGE_TREES_CONFIG", ""),
		},
		Security: SecurityConfig{
			SecurityMode: getEnv("LINEAGE_SECURITY_MODE", "development"),
			APIToken:     getEnv("LINEAGE_API_TOKEN", ""),
			RateLimit:    float64(getEnvInt("LINEAGE_RATE_LIMIT", 50)),
			RateBurst:    getEnvInt("LINEAGE_RATE_BURST", 100),
		},
		Limits: LimitsConfig{
			MaxDepth: getEnvInt("LINEAGE_MAX_DEPTH", 10),
			MaxNodes: getEnvInt("LINEAGE_MAX_NODES", 10000),
			MaxEdges: getEnvInt("LINEAGE_MAX_EDGES", 50000),
		},
		Persist: PersistConfig{
			Debounce:       getEnvDuration("LINEAGE_PERSIST_DEBOUNCE", 2*time.Second),
			MaxFailures:    getEnvInt("LINEAGE_PERSIST_MAX_FAILURES", 3),
			BreakerTimeout: getEnvDuration("LINEAGE_PERSIST_BREAKER_TIMEOUT", 30*time.Second),
		},
		Archive: ArchiveConfig{
			Dir:      getEnv("LINEAGE_ARCHIVE_DIR", ""),
			Interval: getEnvDuration("LINEAGE_ARCHIVE_INTERVAL", 1*time.Hour),
		},
	}, nil
}

// IsProduction reports whether the server runs in production security mode.
func (c *Config) IsProduction() bool {
	return c.Security.SecurityMode == "production"
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// the default is returned.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable ("2s", "500ms")
// or returns a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
