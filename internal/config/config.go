package config

import (
	"os"
)

type Config struct {
	Database DatabaseConfig
	Log      LogConfig
}

type DatabaseConfig struct {
	Path string
}

type LogConfig struct {
	Level  string
	Format string
	// File receives log output while the TUI owns the terminal.
	File string
}

func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: getEnv("LEDGER_DB_PATH", "readings.db"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
			File:   getEnv("LOG_FILE", "meterledger.log"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
