// Package cache provides the response caches used by the catalog HTTP client.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrCacheMiss indicates a cache miss.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores opaque response bodies with a per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Strategy selects how long a response may be served from cache.
type Strategy string

const (
	NoCache    Strategy = "no_cache"
	ShortTerm  Strategy = "short_term"
	MediumTerm Strategy = "medium_term"
	LongTerm   Strategy = "long_term"
)

// TTLs maps strategies to durations.
type TTLs struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// DefaultTTLs returns the default strategy durations.
func DefaultTTLs() TTLs {
	return TTLs{
		Short:  3 * time.Minute,
		Medium: 15 * time.Minute,
		Long:   60 * time.Minute,
	}
}

// For returns the TTL of strategy s. NoCache and unknown strategies yield 0.
func (t TTLs) For(s Strategy) time.Duration {
	switch s {
	case ShortTerm:
		return t.Short
	case MediumTerm:
		return t.Medium
	case LongTerm:
		return t.Long
	}
	return 0
}

// Key derives a cache key from the parts of a request (method, path, query, body,
// language). Parts are separated so that ("ab", "c") and ("a", "bc") differ.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Expired   uint64 `json:"expired"`
	Size      int    `json:"size"`
	Capacity  int    `json:"capacity"`
}

// HitRatio returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
