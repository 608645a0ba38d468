package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth
	APIKey string `yaml:"api_key"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Session state
	SessionTTL      time.Duration `yaml:"session_ttl"`
	MaxSessions     int           `yaml:"max_sessions"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`

	// Latency stats window
	StatsWindow time.Duration `yaml:"stats_window"`

	LogLevel string `yaml:"log_level"`
}

func defaults() Config {
	return Config{
		Port:            "8090",
		MaxUploadBytes:  10485760, // 10MB
		SessionTTL:      1 * time.Hour,
		MaxSessions:     1000,
		CleanupInterval: 5 * time.Minute,
		StatsWindow:     1 * time.Hour,
		LogLevel:        "info",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// DOCMARK_CONFIG if set, then environment variables.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("DOCMARK_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("DOCMARK_API_KEY", cfg.APIKey)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.SessionTTL = envDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.MaxSessions = envInt("MAX_SESSIONS", cfg.MaxSessions)
	cfg.CleanupInterval = envDuration("CLEANUP_INTERVAL", cfg.CleanupInterval)
	cfg.StatsWindow = envDuration("STATS_WINDOW", cfg.StatsWindow)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)

	d := defaults()
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = d.MaxUploadBytes
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = d.SessionTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = d.MaxSessions
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = d.CleanupInterval
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = d.StatsWindow
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCMARK_API_KEY is required")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
