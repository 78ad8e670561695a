package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// External structure extraction
	Extractor       string
	AnthropicAPIKey string
	AnthropicModel  string
	GoogleAPIKey    string
	GeminiModel     string
	ExtractTimeout  time.Duration
	MaxExtractChars int

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Pathstore persistence; disabled when the key is empty.
	PathstoreURL    string
	PathstoreAPIKey string

	// Heading families
	PatternDir         string
	PatternWatch       bool
	ProximityThreshold int

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCOUTLINE_API_KEY"),

		Extractor:       strings.ToLower(envOr("EXTRACTOR", "claude")),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		GoogleAPIKey:    os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:     envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		ExtractTimeout:  envDuration("EXTRACT_TIMEOUT", 90*time.Second),
		MaxExtractChars: envInt("MAX_EXTRACT_CHARS", 60000),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PathstoreURL:    envOr("PATHSTORE_URL", "http://localhost:8080"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),

		PatternDir:         os.Getenv("PATTERN_DIR"),
		PatternWatch:       envBool("PATTERN_WATCH", false),
		ProximityThreshold: envInt("PROXIMITY_THRESHOLD", 5),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.ExtractTimeout <= 0 {
		cfg.ExtractTimeout = 90 * time.Second
	}
	if cfg.MaxExtractChars <= 0 {
		cfg.MaxExtractChars = 60000
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.ProximityThreshold <= 0 {
		cfg.ProximityThreshold = 5
	}

	return cfg
}

// Validate checks the settings the server cannot run without.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCOUTLINE_API_KEY is required")
	}
	switch c.Extractor {
	case "claude":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when EXTRACTOR=claude")
		}
	case "gemini":
		if c.GoogleAPIKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY is required when EXTRACTOR=gemini")
		}
	case "off":
	default:
		return fmt.Errorf("EXTRACTOR must be claude, gemini or off, got %q", c.Extractor)
	}
	if c.PatternWatch && c.PatternDir == "" {
		return fmt.Errorf("PATTERN_WATCH requires PATTERN_DIR")
	}
	return nil
}

// PathstoreEnabled reports whether finished outlines are persisted.
func (c Config) PathstoreEnabled() bool {
	return c.PathstoreAPIKey != ""
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
