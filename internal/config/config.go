package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigEnv names the variable pointing at an optional YAML config file.
// Environment variables override values read from the file.
const ConfigEnv = "ORGTREE_CONFIG"

type Config struct {
	Port string

	// Auth
	APIKey string

	// Upload limits
	MaxUploadBytes int64

	// Session state
	DocTTL time.Duration

	// Outline
	HeadingMarker byte

	// Batch and watch
	WorkerCount   int
	WatchDebounce time.Duration

	LogLevel string

	// PDF
	PDFFallbackPdftotext bool
}

// fileConfig mirrors Config in the YAML file. Unset keys keep defaults.
type fileConfig struct {
	Port                 string `yaml:"port"`
	APIKey               string `yaml:"api_key"`
	MaxUploadBytes       int64  `yaml:"max_upload_bytes"`
	DocTTL               string `yaml:"doc_ttl"`
	HeadingMarker        string `yaml:"heading_marker"`
	WorkerCount          int    `yaml:"worker_count"`
	WatchDebounce        string `yaml:"watch_debounce"`
	LogLevel             string `yaml:"log_level"`
	PDFFallbackPdftotext *bool  `yaml:"pdf_fallback_pdftotext"`
}

func defaults() Config {
	return Config{
		Port:                 "8090",
		MaxUploadBytes:       52428800, // 50MB
		DocTTL:               1 * time.Hour,
		HeadingMarker:        '*',
		WorkerCount:          4,
		WatchDebounce:        200 * time.Millisecond,
		LogLevel:             "info",
		PDFFallbackPdftotext: true,
	}
}

// Load builds the configuration from defaults, the optional YAML file
// named by ORGTREE_CONFIG, and the environment, in that order.
func Load() (Config, error) {
	cfg := defaults()
	if path := os.Getenv(ConfigEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("ORGTREE_API_KEY", cfg.APIKey)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.DocTTL = envDuration("DOC_TTL", cfg.DocTTL)
	if m := os.Getenv("HEADING_MARKER"); m != "" {
		cfg.HeadingMarker = m[0]
	}
	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.WatchDebounce = envDuration("WATCH_DEBOUNCE", cfg.WatchDebounce)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)

	def := defaults()
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = def.WorkerCount
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = def.MaxUploadBytes
	}
	if cfg.DocTTL <= 0 {
		cfg.DocTTL = def.DocTTL
	}
	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = def.WatchDebounce
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config file %s not found", path)
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.Port != "" {
		c.Port = fc.Port
	}
	if fc.APIKey != "" {
		c.APIKey = fc.APIKey
	}
	if fc.MaxUploadBytes != 0 {
		c.MaxUploadBytes = fc.MaxUploadBytes
	}
	if fc.DocTTL != "" {
		d, err := time.ParseDuration(fc.DocTTL)
		if err != nil {
			return fmt.Errorf("config %s: doc_ttl: %w", path, err)
		}
		c.DocTTL = d
	}
	if fc.HeadingMarker != "" {
		c.HeadingMarker = fc.HeadingMarker[0]
	}
	if fc.WorkerCount != 0 {
		c.WorkerCount = fc.WorkerCount
	}
	if fc.WatchDebounce != "" {
		d, err := time.ParseDuration(fc.WatchDebounce)
		if err != nil {
			return fmt.Errorf("config %s: watch_debounce: %w", path, err)
		}
		c.WatchDebounce = d
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.PDFFallbackPdftotext != nil {
		c.PDFFallbackPdftotext = *fc.PDFFallbackPdftotext
	}
	return nil
}

// Validate checks settings shared by every entry point.
func (c Config) Validate() error {
	if err := ValidateMarker(c.HeadingMarker); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// ValidateServer additionally requires the API key the server authenticates with.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("ORGTREE_API_KEY is required")
	}
	return nil
}

// ValidateMarker rejects heading markers that would collide with list
// syntax or indentation.
func ValidateMarker(m byte) error {
	switch {
	case m == ' ' || m == '\t' || m == '-' || m == '+':
		return fmt.Errorf("HEADING_MARKER %q is not allowed", m)
	case m >= '0' && m <= '9', m >= 'a' && m <= 'z', m >= 'A' && m <= 'Z':
		return fmt.Errorf("HEADING_MARKER %q must be punctuation", m)
	case m < '!' || m > '~':
		return fmt.Errorf("HEADING_MARKER must be a printable ASCII character")
	}
	return nil
}

// Level parses LogLevel into a slog level.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
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

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
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
