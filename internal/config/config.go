// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir          string // Base directory for all databases (always absolute)
	Port             int
	LogLevel         string
	DevMode          bool
	Workers          int // Worker goroutines per selection request; 0 = NumCPU
	RequestTimeoutMS int // Per-selection wall-clock budget in milliseconds
	HistoryRetention int // Days of selection history to keep
	CacheEnabled     bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("PUMPSELECT_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:          absDataDir,
		Port:             getEnvAsInt("PUMPSELECT_PORT", 8080),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		Workers:          getEnvAsInt("PUMPSELECT_WORKERS", 0),
		RequestTimeoutMS: getEnvAsInt("PUMPSELECT_REQUEST_TIMEOUT_MS", 10000),
		HistoryRetention: getEnvAsInt("PUMPSELECT_HISTORY_RETENTION_DAYS", 30),
		CacheEnabled:     getEnvAsBool("PUMPSELECT_CACHE_ENABLED", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.RequestTimeoutMS <= 0 {
		return fmt.Errorf("request timeout must be positive, got %d", c.RequestTimeoutMS)
	}
	if c.HistoryRetention < 0 {
		return fmt.Errorf("history retention must be non-negative, got %d", c.HistoryRetention)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
