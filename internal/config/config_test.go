package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// CONFIG TESTS
// =============================================================================

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"STOREFRONT_API_URL",
		"STOREFRONT_SESSION_BACKEND",
		"STOREFRONT_REDIS_URL",
		"STOREFRONT_DATA_DIR",
		"STOREFRONT_LOG_LEVEL",
		"STOREFRONT_DARK_MODE",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Catalog.PageSize != 12 {
		t.Errorf("expected PageSize=12, got %d", cfg.Catalog.PageSize)
	}
	if cfg.Session.Backend != BackendFile {
		t.Errorf("expected Backend=file, got %s", cfg.Session.Backend)
	}
	if cfg.Pricing.TaxRate != 0.10 {
		t.Errorf("expected TaxRate=0.10, got %v", cfg.Pricing.TaxRate)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://shop.example.com"
	cfg.Session.Backend = BackendSQLite
	cfg.Catalog.PageSize = 24

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.API.BaseURL != "https://shop.example.com" {
		t.Errorf("expected BaseURL to round-trip, got %s", loaded.API.BaseURL)
	}
	if loaded.Session.Backend != BackendSQLite {
		t.Errorf("expected Backend=sqlite, got %s", loaded.Session.Backend)
	}
	if loaded.Catalog.PageSize != 24 {
		t.Errorf("expected PageSize=24, got %d", loaded.Catalog.PageSize)
	}
}

func TestConfig_LoadMissingFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load of missing file should not fail: %v", err)
	}
	if cfg.API.BaseURL != DefaultConfig().API.BaseURL {
		t.Errorf("expected default BaseURL, got %s", cfg.API.BaseURL)
	}
}

func TestConfig_LoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("api: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api" }},
		{"ftp scheme", func(c *Config) { c.API.BaseURL = "ftp://host" }},
		{"unknown backend", func(c *Config) { c.Session.Backend = "localStorage" }},
		{"redis without url", func(c *Config) { c.Session.Backend = BackendRedis; c.Session.RedisURL = "" }},
		{"zero page size", func(c *Config) { c.Catalog.PageSize = 0 }},
		{"inverted price range", func(c *Config) { c.Catalog.PriceMin = 10; c.Catalog.PriceMax = 5 }},
		{"negative tax", func(c *Config) { c.Pricing.TaxRate = -0.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestConfig_Timeouts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Timeout = "bogus"
	if got := cfg.GetAPITimeout(); got != 15*time.Second {
		t.Errorf("expected fallback 15s, got %v", got)
	}
	cfg.API.Timeout = "3s"
	if got := cfg.GetAPITimeout(); got != 3*time.Second {
		t.Errorf("expected 3s, got %v", got)
	}

	if got := cfg.GetSessionTTL(); got != 0 {
		t.Errorf("expected no TTL by default, got %v", got)
	}
	cfg.Session.TTL = "24h"
	if got := cfg.GetSessionTTL(); got != 24*time.Hour {
		t.Errorf("expected 24h, got %v", got)
	}
}

func TestConfig_SessionPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/data"

	if got := cfg.SessionPath(); got != filepath.Join("/data", "session.json") {
		t.Errorf("unexpected session path %s", got)
	}

	cfg.Session.Backend = BackendSQLite
	cfg.Session.Path = ""
	if got := cfg.SessionPath(); got != filepath.Join("/data", "storefront.db") {
		t.Errorf("unexpected sqlite path %s", got)
	}

	abs := filepath.Join(t.TempDir(), "tok.json")
	cfg.Session.Path = abs
	if got := cfg.SessionPath(); got != abs {
		t.Errorf("absolute path should be kept, got %s", got)
	}
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	lc := LoggingConfig{}
	if lc.IsCategoryEnabled("api") {
		t.Error("categories must be off when debug_mode is false")
	}

	lc.DebugMode = true
	if !lc.IsCategoryEnabled("api") {
		t.Error("all categories on by default in debug mode")
	}

	lc.Categories = map[string]bool{"api": false}
	if lc.IsCategoryEnabled("api") {
		t.Error("explicitly disabled category should be off")
	}
	if !lc.IsCategoryEnabled("auth") {
		t.Error("unspecified category should default on")
	}
}

func TestValidate_LogFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Format = "console"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("console format should be accepted: %v", err)
	}
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("expected unknown log format to be rejected")
	}
}
