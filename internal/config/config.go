package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/papertrim/internal/errs"
)

type Config struct {
	Port string

	// Auth for /api routes. Empty disables auth.
	APIKey string

	// Source fetch
	FetchTimeout     time.Duration
	MaxDownloadBytes int64

	// Upload limits
	MaxUploadBytes int64

	// Document loader hand-off
	LoaderURL     string
	LoaderAPIKey  string
	LoaderTimeout time.Duration

	// Fetch latency window
	StatsWindow time.Duration

	LogLevel string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		APIKey: os.Getenv("PAPERTRIM_API_KEY"),

		FetchTimeout:     envDuration("FETCH_TIMEOUT", 30*time.Second),
		MaxDownloadBytes: envInt64("MAX_DOWNLOAD_BYTES", 52428800), // 50MB

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800),

		LoaderURL:     os.Getenv("LOADER_URL"),
		LoaderAPIKey:  os.Getenv("LOADER_API_KEY"),
		LoaderTimeout: envDuration("LOADER_TIMEOUT", 60*time.Second),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),

		LogLevel: envOr("LOG_LEVEL", "info"),
	}

	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.MaxDownloadBytes <= 0 {
		cfg.MaxDownloadBytes = 52428800
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.LoaderTimeout <= 0 {
		cfg.LoaderTimeout = 60 * time.Second
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

// Validate checks settings every run needs. Loader settings are only
// required when a request asks for a hand-off; see ValidateLoader.
func (c Config) Validate() error {
	if c.Port == "" {
		return errs.Configuration("PORT is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return errs.Configuration("PORT must be numeric, got %q", c.Port)
	}
	return nil
}

// ValidateLoader checks the settings needed to forward a document.
func (c Config) ValidateLoader() error {
	if c.LoaderAPIKey == "" {
		return errs.Configuration("Missing API key")
	}
	if c.LoaderURL == "" {
		return errs.Configuration("LOADER_URL is required to forward documents")
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
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
