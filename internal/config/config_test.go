package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/souq/internal/intent"
)

func TestLoad(t *testing.T) {
	t.Setenv(EnvCatalogSecret, "")
	t.Setenv(EnvCatalogBaseURL, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
catalog:
  base_url: "https://api.example.com"
  timeout: 5s
cache:
  short_ttl: 1m
breaker:
  failure_threshold: 3
  recovery_timeout: 10s
storage:
  snapshot_path: "./data/snapshot.db"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Catalog.Timeout != 5*time.Second {
		t.Errorf("catalog timeout = %v", cfg.Catalog.Timeout)
	}
	if cfg.Cache.ShortTTL != time.Minute || cfg.Cache.MediumTTL != 15*time.Minute {
		t.Errorf("cache ttls = %+v", cfg.Cache)
	}
	if cfg.Breaker.FailureThreshold != 3 || cfg.Breaker.SuccessThreshold != 3 ||
		cfg.Breaker.RecoveryTimeout != 10*time.Second {
		t.Errorf("breaker = %+v", cfg.Breaker)
	}
	wantDB := filepath.Join(dir, "data", "snapshot.db")
	if cfg.Storage.SnapshotPath != wantDB {
		t.Errorf("snapshot_path = %s, want %s", cfg.Storage.SnapshotPath, wantDB)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvCatalogSecret, "from-env")
	t.Setenv(EnvCatalogBaseURL, "https://env.example.com")
	cfg, err := Parse([]byte("catalog:\n  secret: from-file\n  base_url: https://file.example.com\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Catalog.Secret != "from-env" || cfg.Catalog.BaseURL != "https://env.example.com" {
		t.Errorf("catalog = %+v", cfg.Catalog)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Parse([]byte("server: [not, a, map]")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("default server: got %+v", cfg.Server)
	}
	if cfg.Search.DefaultLimit != 5 || cfg.Search.MaxLimit != 50 {
		t.Errorf("default limits: got %d/%d", cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	}
	if cfg.RateLimit.MaxRequests != 60 || cfg.RateLimit.Window != time.Minute {
		t.Errorf("default rate limit: got %+v", cfg.RateLimit)
	}
	if cfg.Retry.MaxRetries != 3 || cfg.Retry.BaseDelay != 500*time.Millisecond {
		t.Errorf("default retry: got %+v", cfg.Retry)
	}
	if cfg.Catalog.OffsetHoursOrDefault() != 2 {
		t.Errorf("default signature offset: got %d", cfg.Catalog.OffsetHoursOrDefault())
	}
	if len(cfg.Search.PriceBands) != len(intent.DefaultPriceBands) {
		t.Errorf("price bands: got %v", cfg.Search.PriceBands)
	}
	if cfg.Scoring.PriceInBand != 2.0 {
		t.Errorf("scoring defaults not applied: %+v", cfg.Scoring)
	}
	if !cfg.Watch.EnabledOrDefault() {
		t.Error("watch should default to enabled")
	}
	if cfg.Cache.Redis.Enabled() {
		t.Error("redis should be disabled without an address")
	}
}

func TestParse_ZeroScoringWeightHonored(t *testing.T) {
	cfg, err := Parse([]byte("scoring:\n  season_miss: 0\n  outfit_miss: -2\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Scoring.SeasonMiss != 0 {
		t.Errorf("season_miss = %v, want the explicit 0", cfg.Scoring.SeasonMiss)
	}
	if cfg.Scoring.OutfitMiss != -2 || cfg.Scoring.OccasionMiss != -1.5 {
		t.Errorf("scoring = %+v, want outfit_miss -2 and default occasion_miss", cfg.Scoring)
	}
}

func TestApplyDefaults_ZeroRetriesHonored(t *testing.T) {
	cfg := &Config{}
	cfg.Retry.MaxDelay = time.Second
	ApplyDefaults(cfg)
	if cfg.Retry.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0", cfg.Retry.MaxRetries)
	}
	if cfg.Retry.BaseDelay == 0 {
		t.Error("BaseDelay should be defaulted")
	}
}

func TestCatalogConfig_ZeroOffset(t *testing.T) {
	zero := 0
	c := CatalogConfig{SignatureOffsetHours: &zero}
	if c.OffsetHoursOrDefault() != 0 {
		t.Errorf("OffsetHoursOrDefault() = %d, want 0", c.OffsetHoursOrDefault())
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "base_url") {
		t.Errorf("Validate() = %v, want base_url error", err)
	}

	cfg.Catalog.BaseURL = "https://api.example.com"
	cfg.Search.DefaultLanguage = "fr"
	cfg.Search.PriceBands = []intent.PriceBand{{Range: intent.PriceLow, Min: 0}, {Range: intent.PriceHigh, Min: 10}}
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "price_bands") || !strings.Contains(err.Error(), "default_language") {
		t.Errorf("Validate() = %v, want price band and language errors", err)
	}
}

func TestSave(t *testing.T) {
	t.Setenv(EnvCatalogSecret, "")
	t.Setenv(EnvCatalogBaseURL, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server:  ServerConfig{Host: "localhost", Port: 9090},
		Catalog: CatalogConfig{BaseURL: "https://api.example.com", Secret: "s3cret"},
	}
	ApplyDefaults(cfg)
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "s3cret") {
		t.Error("secret must not be written")
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 || loaded.Catalog.BaseURL != "https://api.example.com" {
		t.Errorf("loaded config: %+v", loaded)
	}
	if loaded.Cache.LongTTL != time.Hour || loaded.Scoring.OccasionHit != 1.5 {
		t.Errorf("durations or scoring did not round trip: %+v %+v", loaded.Cache, loaded.Scoring)
	}
}
