package config

import (
	"testing"
	"time"
)

var allVars = []string{
	"PORT", "DOCOUTLINE_API_KEY", "EXTRACTOR", "ANTHROPIC_API_KEY", "ANTHROPIC_MODEL",
	"GOOGLE_API_KEY", "GEMINI_MODEL", "EXTRACT_TIMEOUT", "MAX_EXTRACT_CHARS",
	"WORKER_COUNT", "MAX_QUEUE_SIZE", "MAX_UPLOAD_BYTES", "JOB_TTL",
	"PATHSTORE_URL", "PATHSTORE_API_KEY", "PATTERN_DIR", "PATTERN_WATCH",
	"PROXIMITY_THRESHOLD", "PDF_FALLBACK_PDFTOTEXT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allVars {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.Extractor != "claude" {
		t.Errorf("expected extractor claude, got %q", cfg.Extractor)
	}
	if cfg.ExtractTimeout != 90*time.Second {
		t.Errorf("expected 90s timeout, got %v", cfg.ExtractTimeout)
	}
	if cfg.MaxExtractChars != 60000 {
		t.Errorf("expected 60000 chars, got %d", cfg.MaxExtractChars)
	}
	if cfg.WorkerCount != 4 || cfg.MaxQueueSize != 100 {
		t.Errorf("expected pool 4/100, got %d/%d", cfg.WorkerCount, cfg.MaxQueueSize)
	}
	if cfg.MaxUploadBytes != 52428800 {
		t.Errorf("expected 50MB upload limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.ProximityThreshold != 5 {
		t.Errorf("expected proximity 5, got %d", cfg.ProximityThreshold)
	}
	if !cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback on by default")
	}
	if cfg.PatternWatch {
		t.Error("expected pattern watch off by default")
	}
	if cfg.PathstoreEnabled() {
		t.Error("expected pathstore disabled without a key")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXTRACTOR", "Gemini")
	t.Setenv("EXTRACT_TIMEOUT", "15s")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("PROXIMITY_THRESHOLD", "3")
	t.Setenv("PATTERN_DIR", "/etc/docoutline/patterns")
	t.Setenv("PATTERN_WATCH", "true")
	t.Setenv("PATHSTORE_API_KEY", "ps")

	cfg := Load()
	if cfg.Extractor != "gemini" {
		t.Errorf("expected lowercased extractor, got %q", cfg.Extractor)
	}
	if cfg.ExtractTimeout != 15*time.Second {
		t.Errorf("expected 15s, got %v", cfg.ExtractTimeout)
	}
	if cfg.WorkerCount != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.WorkerCount)
	}
	if cfg.ProximityThreshold != 3 {
		t.Errorf("expected proximity 3, got %d", cfg.ProximityThreshold)
	}
	if !cfg.PatternWatch || cfg.PatternDir == "" {
		t.Errorf("expected pattern watch on with a dir, got %v %q", cfg.PatternWatch, cfg.PatternDir)
	}
	if !cfg.PathstoreEnabled() {
		t.Error("expected pathstore enabled with a key")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("WORKER_COUNT", "-2")
	t.Setenv("EXTRACT_TIMEOUT", "soon")
	t.Setenv("PROXIMITY_THRESHOLD", "abc")

	cfg := Load()
	if cfg.WorkerCount != 4 {
		t.Errorf("expected fallback 4 workers, got %d", cfg.WorkerCount)
	}
	if cfg.ExtractTimeout != 90*time.Second {
		t.Errorf("expected fallback timeout, got %v", cfg.ExtractTimeout)
	}
	if cfg.ProximityThreshold != 5 {
		t.Errorf("expected fallback proximity, got %d", cfg.ProximityThreshold)
	}
}

func TestValidate(t *testing.T) {
	base := Config{APIKey: "k", Extractor: "off"}
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"off needs no provider key", func(c *Config) {}, false},
		{"missing api key", func(c *Config) { c.APIKey = "" }, true},
		{"claude without key", func(c *Config) { c.Extractor = "claude" }, true},
		{"claude with key", func(c *Config) { c.Extractor = "claude"; c.AnthropicAPIKey = "a" }, false},
		{"gemini without key", func(c *Config) { c.Extractor = "gemini" }, true},
		{"gemini with key", func(c *Config) { c.Extractor = "gemini"; c.GoogleAPIKey = "g" }, false},
		{"unknown extractor", func(c *Config) { c.Extractor = "gpt" }, true},
		{"watch without dir", func(c *Config) { c.PatternWatch = true }, true},
		{"watch with dir", func(c *Config) { c.PatternWatch = true; c.PatternDir = "/p" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
