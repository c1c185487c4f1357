package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Tiered reads through a fast local cache to a shared remote one. Failures of the
// remote tier are logged and treated as misses so the client keeps working without it.
type Tiered struct {
	local       *MemoryCache
	remote      Cache
	backfillTTL time.Duration
	logger      *zap.Logger
}

// NewTiered creates a two-level cache. Remote hits are copied into local for backfillTTL.
func NewTiered(local *MemoryCache, remote Cache, backfillTTL time.Duration, logger *zap.Logger) *Tiered {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tiered{local: local, remote: remote, backfillTTL: backfillTTL, logger: logger}
}

func (t *Tiered) Get(ctx context.Context, key string) ([]byte, error) {
	if v, err := t.local.Get(ctx, key); err == nil {
		return v, nil
	}
	v, err := t.remote.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			t.logger.Warn("remote cache get failed", zap.Error(err))
		}
		return nil, ErrCacheMiss
	}
	_ = t.local.Set(ctx, key, v, t.backfillTTL)
	return v, nil
}

func (t *Tiered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_ = t.local.Set(ctx, key, value, ttl)
	if err := t.remote.Set(ctx, key, value, ttl); err != nil {
		t.logger.Warn("remote cache set failed", zap.Error(err))
	}
	return nil
}

func (t *Tiered) Delete(ctx context.Context, key string) error {
	_ = t.local.Delete(ctx, key)
	return t.remote.Delete(ctx, key)
}

// Stats reports the local tier.
func (t *Tiered) Stats() Stats {
	return t.local.Stats()
}

func (t *Tiered) Close() error {
	return errors.Join(t.local.Close(), t.remote.Close())
}
