// Package config provides configuration loading and structs for the Souq search server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/souq/internal/cache"
	"github.com/hyperjump/souq/internal/httpclient"
	"github.com/hyperjump/souq/internal/intent"
	"github.com/hyperjump/souq/internal/ranking"
)

// Environment variables that override file settings.
const (
	EnvCatalogSecret  = "SOUQ_CATALOG_SECRET"
	EnvCatalogBaseURL = "SOUQ_CATALOG_BASE_URL"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool                     `yaml:"debug"`
	Server    ServerConfig             `yaml:"server"`
	Catalog   CatalogConfig            `yaml:"catalog"`
	Cache     CacheConfig              `yaml:"cache"`
	RateLimit RateLimitConfig          `yaml:"rate_limit"`
	Breaker   httpclient.BreakerConfig `yaml:"breaker"`
	Retry     httpclient.RetryPolicy   `yaml:"retry"`
	Search    SearchConfig             `yaml:"search"`
	Scoring   ranking.ScoringConfig    `yaml:"scoring"`
	Storage   StorageConfig            `yaml:"storage"`
	Watch     WatchConfig              `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CatalogConfig describes the remote product catalog API.
type CatalogConfig struct {
	BaseURL         string        `yaml:"base_url"`
	StorefrontURL   string        `yaml:"storefront_url"`
	Secret          string        `yaml:"secret"`
	SignatureHeader string        `yaml:"signature_header"`
	Timeout         time.Duration `yaml:"timeout"`
	PageSize        int           `yaml:"page_size"`
	PopularPageSize int           `yaml:"popular_page_size"`
	// SignatureOffsetHours is the UTC offset of the clock the signature hour is read
	// from. Nil means the default (+2); zero is a valid offset.
	SignatureOffsetHours *int `yaml:"signature_offset_hours"`
}

// OffsetHoursOrDefault returns the signature UTC offset; defaults to 2 when unset.
func (c *CatalogConfig) OffsetHoursOrDefault() int {
	if c.SignatureOffsetHours != nil {
		return *c.SignatureOffsetHours
	}
	return 2
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Capacity  int               `yaml:"capacity"`
	ShortTTL  time.Duration     `yaml:"short_ttl"`
	MediumTTL time.Duration     `yaml:"medium_ttl"`
	LongTTL   time.Duration     `yaml:"long_ttl"`
	Redis     cache.RedisConfig `yaml:"redis"`
}

// TTLs returns the per-strategy durations.
func (c *CacheConfig) TTLs() cache.TTLs {
	return cache.TTLs{Short: c.ShortTTL, Medium: c.MediumTTL, Long: c.LongTTL}
}

// RateLimitConfig bounds outgoing catalog calls.
type RateLimitConfig struct {
	MaxRequests int           `yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

// SearchConfig holds search settings.
type SearchConfig struct {
	DefaultLimit    int                `yaml:"default_limit"`
	MaxLimit        int                `yaml:"max_limit"`
	MaxCandidates   int                `yaml:"max_candidates"`
	DefaultLanguage string             `yaml:"default_language"`
	MaxSuggestions  int                `yaml:"max_suggestions"`
	Timeout         time.Duration      `yaml:"timeout"`
	PriceBands      []intent.PriceBand `yaml:"price_bands"`
}

// StorageConfig holds the product snapshot database path.
type StorageConfig struct {
	SnapshotPath string `yaml:"snapshot_path"`
}

// WatchConfig controls config file hot reload.
type WatchConfig struct {
	Enabled  *bool         `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// EnabledOrDefault returns whether to watch the config file; defaults to true when unset.
func (w *WatchConfig) EnabledOrDefault() bool {
	if w.Enabled != nil {
		return *w.Enabled
	}
	return true
}

// Load reads and parses the config file at path, applies environment overrides and
// defaults, and expands paths. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.Storage.SnapshotPath = expandPath(cfg.Storage.SnapshotPath, filepath.Dir(path))
	return cfg, nil
}

// Parse decodes YAML config data and applies environment overrides and defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	ApplyEnv(&cfg)
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// ApplyEnv overrides settings from the environment. Secrets belong there rather
// than in the file.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvCatalogSecret)); v != "" {
		cfg.Catalog.Secret = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCatalogBaseURL)); v != "" {
		cfg.Catalog.BaseURL = v
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Catalog.BaseURL == "" {
		errs = append(errs, errors.New("catalog.base_url is required"))
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		errs = append(errs, fmt.Errorf("search.default_limit %d exceeds search.max_limit %d",
			c.Search.DefaultLimit, c.Search.MaxLimit))
	}
	if !intent.ValidateBands(c.Search.PriceBands) {
		errs = append(errs, errors.New("search.price_bands must increase without gaps or overlap"))
	}
	switch c.Search.DefaultLanguage {
	case "ar", "en":
	default:
		errs = append(errs, fmt.Errorf("search.default_language %q must be ar or en", c.Search.DefaultLanguage))
	}
	return errors.Join(errs...)
}

// Save writes the config to path. The catalog secret is never written.
func Save(path string, cfg *Config) error {
	out := *cfg
	out.Catalog.Secret = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
