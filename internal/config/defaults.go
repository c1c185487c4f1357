package config

import (
	"time"

	"github.com/hyperjump/souq/internal/httpclient"
	"github.com/hyperjump/souq/internal/intent"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	if cfg.Catalog.SignatureHeader == "" {
		cfg.Catalog.SignatureHeader = httpclient.DefaultSignatureHeader
	}
	if cfg.Catalog.Timeout == 0 {
		cfg.Catalog.Timeout = 10 * time.Second
	}
	if cfg.Catalog.PageSize == 0 {
		cfg.Catalog.PageSize = 20
	}
	if cfg.Catalog.PopularPageSize == 0 {
		cfg.Catalog.PopularPageSize = 50
	}

	if cfg.Cache.Capacity == 0 {
		cfg.Cache.Capacity = 1000
	}
	if cfg.Cache.ShortTTL == 0 {
		cfg.Cache.ShortTTL = 3 * time.Minute
	}
	if cfg.Cache.MediumTTL == 0 {
		cfg.Cache.MediumTTL = 15 * time.Minute
	}
	if cfg.Cache.LongTTL == 0 {
		cfg.Cache.LongTTL = 60 * time.Minute
	}
	if cfg.Cache.Redis.Enabled() && cfg.Cache.Redis.Prefix == "" {
		cfg.Cache.Redis.Prefix = "souq:"
	}

	if cfg.RateLimit.MaxRequests == 0 {
		cfg.RateLimit.MaxRequests = 60
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = time.Minute
	}

	breaker := httpclient.DefaultBreakerConfig()
	if cfg.Breaker.FailureThreshold == 0 {
		cfg.Breaker.FailureThreshold = breaker.FailureThreshold
	}
	if cfg.Breaker.SuccessThreshold == 0 {
		cfg.Breaker.SuccessThreshold = breaker.SuccessThreshold
	}
	if cfg.Breaker.RecoveryTimeout == 0 {
		cfg.Breaker.RecoveryTimeout = breaker.RecoveryTimeout
	}

	// An empty retry section gets the default policy. Once any field is set,
	// max_retries: 0 is honored and only the timing fields are filled in.
	retry := httpclient.DefaultRetryPolicy()
	if cfg.Retry == (httpclient.RetryPolicy{}) {
		cfg.Retry = retry
	}
	if cfg.Retry.BaseDelay == 0 {
		cfg.Retry.BaseDelay = retry.BaseDelay
	}
	if cfg.Retry.BackoffFactor == 0 {
		cfg.Retry.BackoffFactor = retry.BackoffFactor
	}
	if cfg.Retry.MaxDelay == 0 {
		cfg.Retry.MaxDelay = retry.MaxDelay
	}

	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 5
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 50
	}
	if cfg.Search.MaxCandidates == 0 {
		cfg.Search.MaxCandidates = 200
	}
	if cfg.Search.DefaultLanguage == "" {
		cfg.Search.DefaultLanguage = "ar"
	}
	if cfg.Search.MaxSuggestions == 0 {
		cfg.Search.MaxSuggestions = 5
	}
	if cfg.Search.Timeout == 0 {
		cfg.Search.Timeout = 30 * time.Second
	}
	if len(cfg.Search.PriceBands) == 0 {
		cfg.Search.PriceBands = append([]intent.PriceBand(nil), intent.DefaultPriceBands...)
	}

	cfg.Scoring.ApplyDefaults()

	if cfg.Storage.SnapshotPath == "" {
		cfg.Storage.SnapshotPath = "/usr/local/var/souq/data/snapshot.db"
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
}
