package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	ttls := DefaultTTLs()
	for _, s := range []Strategy{ShortTerm, MediumTerm, LongTerm} {
		c := NewMemoryCache(10)
		key := Key("POST", "/api/v2/products/filter", string(s))
		if err := c.Set(ctx, key, []byte("body"), ttls.For(s)); err != nil {
			t.Fatal(err)
		}
		v, err := c.Get(ctx, key)
		if err != nil || string(v) != "body" {
			t.Errorf("%s: Get = %q, %v", s, v, err)
		}
	}
}

func TestMemoryCache_NoCacheStoresNothing(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10)
	_ = c.Set(ctx, "k", []byte("v"), DefaultTTLs().For(NoCache))
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("no_cache entry should miss, got %v", err)
	}
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := NewMemoryCache(10, WithClock(clock.Now))

	_ = c.Set(ctx, "short", []byte("s"), 3*time.Minute)
	_ = c.Set(ctx, "long", []byte("l"), time.Hour)

	clock.Advance(3*time.Minute - time.Second)
	if _, err := c.Get(ctx, "short"); err != nil {
		t.Fatalf("entry should be live before its TTL: %v", err)
	}
	clock.Advance(time.Second)
	if _, err := c.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("entry should expire at its TTL, got %v", err)
	}
	if _, err := c.Get(ctx, "long"); err != nil {
		t.Errorf("long entry should still be live: %v", err)
	}
	if s := c.Stats(); s.Expired != 1 || s.Size != 1 {
		t.Errorf("Stats = %+v", s)
	}
}

func TestMemoryCache_BulkEviction(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := NewMemoryCache(4, WithClock(clock.Now))

	for _, k := range []string{"a", "b", "c", "d"} {
		_ = c.Set(ctx, k, []byte(k), time.Hour)
		clock.Advance(time.Second)
	}
	// c and d are read, a and b are not.
	for i := 0; i < 3; i++ {
		_, _ = c.Get(ctx, "c")
		_, _ = c.Get(ctx, "d")
	}

	_ = c.Set(ctx, "e", []byte("e"), time.Hour)

	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3 after evicting half of 4", c.Len())
	}
	for _, k := range []string{"a", "b"} {
		if _, err := c.Get(ctx, k); err == nil {
			t.Errorf("%s should have been evicted", k)
		}
	}
	for _, k := range []string{"c", "d", "e"} {
		if _, err := c.Get(ctx, k); err != nil {
			t.Errorf("%s should remain: %v", k, err)
		}
	}
	if s := c.Stats(); s.Evictions != 2 {
		t.Errorf("Evictions = %d, want 2", s.Evictions)
	}
}

func TestMemoryCache_EvictionPrefersOldestOnTies(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := NewMemoryCache(2, WithClock(clock.Now))

	_ = c.Set(ctx, "old", []byte("1"), time.Hour)
	clock.Advance(time.Second)
	_ = c.Set(ctx, "new", []byte("2"), time.Hour)
	clock.Advance(time.Second)
	_ = c.Set(ctx, "newest", []byte("3"), time.Hour)

	if _, err := c.Get(ctx, "old"); err == nil {
		t.Error("oldest entry should be evicted first")
	}
	if _, err := c.Get(ctx, "new"); err != nil {
		t.Errorf("new should remain: %v", err)
	}
}

func TestMemoryCache_ExpiredEntriesFreeRoomFirst(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := NewMemoryCache(2, WithClock(clock.Now))

	_ = c.Set(ctx, "stale", []byte("1"), time.Minute)
	_ = c.Set(ctx, "live", []byte("2"), time.Hour)
	clock.Advance(2 * time.Minute)
	_ = c.Set(ctx, "fresh", []byte("3"), time.Hour)

	if _, err := c.Get(ctx, "live"); err != nil {
		t.Errorf("live entry should survive when an expired one frees room: %v", err)
	}
	if s := c.Stats(); s.Evictions != 0 {
		t.Errorf("Evictions = %d, want 0", s.Evictions)
	}
}

func TestMemoryCache_OverwriteResetsTTL(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := NewMemoryCache(2, WithClock(clock.Now))

	_ = c.Set(ctx, "k", []byte("v1"), time.Minute)
	clock.Advance(50 * time.Second)
	_ = c.Set(ctx, "k", []byte("v2"), time.Minute)
	clock.Advance(50 * time.Second)

	v, err := c.Get(ctx, "k")
	if err != nil || string(v) != "v2" {
		t.Errorf("Get = %q, %v", v, err)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(50)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*200+i)%120)
				_ = c.Set(ctx, key, []byte(key), time.Minute)
				_, _ = c.Get(ctx, key)
			}
		}(g)
	}
	wg.Wait()
	if c.Len() > 50 {
		t.Errorf("Len = %d exceeds capacity", c.Len())
	}
}

func TestKey(t *testing.T) {
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("Key should separate parts")
	}
	if Key("POST", "/x", "ar") != Key("POST", "/x", "ar") {
		t.Error("Key should be deterministic")
	}
	if Key("POST", "/x", "ar") == Key("POST", "/x", "en") {
		t.Error("language should change the key")
	}
}

func TestStats_HitRatio(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(4)
	if c.Stats().HitRatio() != 0 {
		t.Error("empty cache should report ratio 0")
	}
	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "missing")
	if got := c.Stats().HitRatio(); got != 0.5 {
		t.Errorf("HitRatio = %v, want 0.5", got)
	}
}
