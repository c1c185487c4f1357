package watcher

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/souq/internal/config"
	"github.com/hyperjump/souq/internal/ranking"
)

// ScoringTarget receives reloaded scoring weights.
type ScoringTarget interface {
	SetConfig(cfg *ranking.ScoringConfig)
}

// ConfigReloader re-reads a config file and applies the parts that can change while
// the server runs. Only the scoring weights are hot-swapped; other sections need a
// restart and are reported when they differ.
type ConfigReloader struct {
	target ScoringTarget
	logger *zap.Logger

	mu      sync.Mutex
	current *config.Config
	reloads int
}

// NewConfigReloader creates a reloader that starts from current.
func NewConfigReloader(current *config.Config, target ScoringTarget, logger *zap.Logger) *ConfigReloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigReloader{target: target, logger: logger, current: current}
}

// Reload loads path and applies it. An unreadable or invalid file leaves the running
// configuration untouched.
func (r *ConfigReloader) Reload(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		r.logger.Warn("config reload failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("reload %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		r.logger.Warn("reloaded config is invalid", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("reload %s: %w", path, err)
	}

	r.mu.Lock()
	prev := r.current
	r.current = cfg
	r.reloads++
	r.mu.Unlock()

	r.target.SetConfig(&cfg.Scoring)
	r.logger.Info("scoring configuration reloaded", zap.String("path", path))
	if prev != nil && restartNeeded(prev, cfg) {
		r.logger.Warn("config changes outside scoring take effect after a restart", zap.String("path", path))
	}
	return nil
}

// OnChange adapts Reload to a Watcher callback.
func (r *ConfigReloader) OnChange(path string) {
	_ = r.Reload(path)
}

// Current returns the last configuration applied.
func (r *ConfigReloader) Current() *config.Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Reloads returns how many reloads succeeded.
func (r *ConfigReloader) Reloads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reloads
}

func restartNeeded(a, b *config.Config) bool {
	return a.Server != b.Server ||
		a.Catalog.BaseURL != b.Catalog.BaseURL ||
		a.Cache.Capacity != b.Cache.Capacity ||
		a.RateLimit != b.RateLimit ||
		a.Breaker != b.Breaker ||
		a.Retry != b.Retry
}
