package httpclient

import (
	"context"
	"math"
	"time"
)

// RetryPolicy controls exponential backoff between attempts.
type RetryPolicy struct {
	MaxRetries    int           `yaml:"max_retries"`
	BaseDelay     time.Duration `yaml:"base_delay"`
	BackoffFactor float64       `yaml:"backoff_factor"`
	MaxDelay      time.Duration `yaml:"max_delay"`
}

// DefaultRetryPolicy returns the default backoff: 0.5s, 1s, 2s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    3,
		BaseDelay:     500 * time.Millisecond,
		BackoffFactor: 2,
		MaxDelay:      10 * time.Second,
	}
}

// Delay returns the wait before retry number attempt (0-based):
// BaseDelay * BackoffFactor^attempt, capped at MaxDelay.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	factor := p.BackoffFactor
	if factor < 1 {
		factor = 1
	}
	d := float64(p.BaseDelay) * math.Pow(factor, float64(attempt))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
