package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all storefront client configuration.
type Config struct {
	// Directory for the session file, the sqlite database and logs.
	DataDir string `yaml:"data_dir"`

	// Remote storefront API
	API APIConfig `yaml:"api"`

	// Token persistence
	Session SessionConfig `yaml:"session"`

	// Product listing defaults
	Catalog CatalogConfig `yaml:"catalog"`

	// Order totals
	Pricing PricingConfig `yaml:"pricing"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`
}

// APIConfig configures the remote HTTP API.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// Session backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// ValidBackends lists all supported token store backends.
var ValidBackends = []string{BackendFile, BackendSQLite, BackendRedis, BackendMemory}

// SessionConfig configures where the bearer token is persisted.
type SessionConfig struct {
	Backend     string `yaml:"backend"`      // file, sqlite, redis, memory
	Path        string `yaml:"path"`         // file or sqlite path; relative to data_dir
	RedisURL    string `yaml:"redis_url"`    // redis://host:port/db
	RedisPrefix string `yaml:"redis_prefix"` // key prefix
	TTL         string `yaml:"ttl"`          // redis key expiry, empty = no expiry
}

// CatalogConfig configures the product listing.
type CatalogConfig struct {
	PageSize int     `yaml:"page_size"`
	Locale   string  `yaml:"locale"` // BCP 47 tag used for name collation
	PriceMin float64 `yaml:"price_min"`
	PriceMax float64 `yaml:"price_max"`
}

// PricingConfig configures the order totals calculator.
type PricingConfig struct {
	TaxRate               float64 `yaml:"tax_rate"`
	FreeShippingThreshold float64 `yaml:"free_shipping_threshold"`
	FlatShippingFee       float64 `yaml:"flat_shipping_fee"`
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	Theme string `yaml:"theme"` // light, dark, auto
}

// DefaultDataDir returns ~/.storefront, or .storefront when no home is known.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".storefront"
	}
	return filepath.Join(home, ".storefront")
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDataDir(), "config.yaml")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir: DefaultDataDir(),

		API: APIConfig{
			BaseURL: "http://localhost:8080",
			Timeout: "15s",
		},

		Session: SessionConfig{
			Backend:     BackendFile,
			Path:        "session.json",
			RedisURL:    "redis://localhost:6379/0",
			RedisPrefix: "storefront",
		},

		Catalog: CatalogConfig{
			PageSize: 12,
			Locale:   "en",
			PriceMin: 0,
			PriceMax: 100,
		},

		Pricing: PricingConfig{
			TaxRate:               0.10,
			FreeShippingThreshold: 50,
			FlatShippingFee:       10,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},

		UI: UIConfig{
			Theme: "auto",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("STOREFRONT_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("STOREFRONT_SESSION_BACKEND"); v != "" {
		c.Session.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("STOREFRONT_REDIS_URL"); v != "" {
		c.Session.RedisURL = v
		if os.Getenv("STOREFRONT_SESSION_BACKEND") == "" {
			c.Session.Backend = BackendRedis
		}
	}
	if v := os.Getenv("STOREFRONT_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("STOREFRONT_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if os.Getenv("STOREFRONT_DARK_MODE") == "1" {
		c.UI.Theme = "dark"
	}
}

// GetAPITimeout returns the API timeout as a duration.
func (c *Config) GetAPITimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// GetSessionTTL returns the token TTL, or zero for no expiry.
func (c *Config) GetSessionTTL() time.Duration {
	if c.Session.TTL == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Session.TTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// SessionPath resolves the session path against the data directory.
func (c *Config) SessionPath() string {
	p := c.Session.Path
	if p == "" {
		switch c.Session.Backend {
		case BackendSQLite:
			p = "storefront.db"
		default:
			p = "session.json"
		}
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

// LogsDir returns the directory for category log files.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api.base_url: %q (must be an absolute http(s) URL)", c.API.BaseURL)
	}

	validBackend := false
	for _, b := range ValidBackends {
		if c.Session.Backend == b {
			validBackend = true
			break
		}
	}
	if !validBackend {
		return fmt.Errorf("invalid session backend: %s (valid: %v)", c.Session.Backend, ValidBackends)
	}
	if c.Session.Backend == BackendRedis && c.Session.RedisURL == "" {
		return fmt.Errorf("session backend redis requires session.redis_url (or STOREFRONT_REDIS_URL)")
	}

	if c.Catalog.PageSize < 1 {
		return fmt.Errorf("catalog.page_size must be positive, got %d", c.Catalog.PageSize)
	}
	if c.Catalog.PriceMin < 0 || c.Catalog.PriceMax < c.Catalog.PriceMin {
		return fmt.Errorf("invalid catalog price range [%v, %v]", c.Catalog.PriceMin, c.Catalog.PriceMax)
	}

	if c.Pricing.TaxRate < 0 || c.Pricing.FreeShippingThreshold < 0 || c.Pricing.FlatShippingFee < 0 {
		return fmt.Errorf("pricing values must not be negative")
	}

	if !c.Logging.validFormat() {
		return fmt.Errorf("invalid logging.format: %s (valid: %v)", c.Logging.Format, LogFormats)
	}

	return nil
}
