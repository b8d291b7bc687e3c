// Package common provides shared utilities for the MoonLight solar data applications.
package common

import (
	"os"
	"path/filepath"
)

// Config holds common configuration for all applications.
type Config struct {
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	DataDir            string
	DashboardAddr      string
	LogLevel           string
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ClickHouseHost:     getEnv("CLICKHOUSE_HOST", "localhost"),
		ClickHousePort:     9000,
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "solar"),
		ClickHouseUser:     getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),
		DataDir:            getEnv("SOLAR_DATA_DIR", "/var/lib/solar-data"),
		DashboardAddr:      getEnv("DASHBOARD_ADDR", ":8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
}

// RawDataDir returns the raw station archive directory path.
func (c *Config) RawDataDir() string {
	return filepath.Join(c.DataDir, "raw")
}

// CleanDataDir returns the cleaned dataset directory path.
func (c *Config) CleanDataDir() string {
	return filepath.Join(c.DataDir, "clean")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
