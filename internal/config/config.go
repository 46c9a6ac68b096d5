// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	// Log ingestion settings.
	LogPath           string // Path to the game log file to tail.
	ReadFromBeginning bool   // Replay the full file before going live.
	ShowReplayedLogs  bool   // Surface replayed events like live ones.

	// Data directory for settings files and the session archive.
	DataDir      string
	DatabasePath string // SQLite archive; empty disables persistence.

	// OTEL settings.
	OTELEndpoint string
	ServiceName  string

	// Operational settings.
	LogLevel       string
	FeedBufferSize int // Feed entries kept for display.
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	dataDir := envStr("STARWATCH_DATA_DIR", defaultDataDir())
	cfg := Config{
		LogPath:           envStr("STARWATCH_LOG_PATH", ""),
		ReadFromBeginning: envBool("STARWATCH_READ_FROM_BEGINNING", true),
		ShowReplayedLogs:  envBool("STARWATCH_SHOW_REPLAYED_LOGS", false),
		DataDir:           dataDir,
		DatabasePath:      envStr("STARWATCH_DB_PATH", filepath.Join(dataDir, "starwatch.db")),
		OTELEndpoint:      envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:       envStr("OTEL_SERVICE_NAME", "starwatch"),
		LogLevel:          envStr("STARWATCH_LOG_LEVEL", "info"),
		FeedBufferSize:    envInt("STARWATCH_FEED_BUFFER_SIZE", 500),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("config: STARWATCH_DATA_DIR is required")
	}
	if c.FeedBufferSize <= 0 {
		return fmt.Errorf("config: STARWATCH_FEED_BUFFER_SIZE must be positive")
	}
	return nil
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".starwatch"
	}
	return filepath.Join(base, "starwatch")
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}
