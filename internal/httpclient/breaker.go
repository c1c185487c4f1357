package httpclient

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/souq/internal/models"
)

// State is a circuit breaker state.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// BreakerConfig tunes a CircuitBreaker.
type BreakerConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	SuccessThreshold int           `yaml:"success_threshold"`
	RecoveryTimeout  time.Duration `yaml:"recovery_timeout"`
}

// DefaultBreakerConfig returns the default breaker thresholds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 3,
		RecoveryTimeout:  30 * time.Second,
	}
}

// CircuitBreaker stops calls to an endpoint group after repeated failures.
//
//	closed    --failure_threshold failures-->   open
//	open      --recovery_timeout elapsed-->     half_open (on the next call)
//	half_open --success_threshold successes-->  closed
//	half_open --any failure-->                  open
type CircuitBreaker struct {
	name   string
	cfg    BreakerConfig
	now    func() time.Time
	logger *zap.Logger

	mu          sync.Mutex
	state       State
	failures    int
	successes   int
	lastFailure time.Time
}

// NewCircuitBreaker creates a closed breaker. A nil now uses time.Now.
func NewCircuitBreaker(name string, cfg BreakerConfig, logger *zap.Logger, now func() time.Time) *CircuitBreaker {
	def := DefaultBreakerConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = def.RecoveryTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &CircuitBreaker{name: name, cfg: cfg, now: now, logger: logger, state: StateClosed}
}

// Allow reports whether a call may proceed. An open breaker whose recovery timeout has
// elapsed moves to half_open and lets the call through.
func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateOpen {
		return nil
	}
	if b.now().Sub(b.lastFailure) >= b.cfg.RecoveryTimeout {
		b.transition(StateHalfOpen)
		return nil
	}
	return models.ErrCircuitOpen
}

// RecordSuccess registers a successful call.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.transition(StateClosed)
		}
	}
}

// RecordFailure registers a failed call.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailure = b.now()
	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.transition(StateOpen)
		}
	case StateHalfOpen:
		b.transition(StateOpen)
	}
}

// transition must be called with mu held.
func (b *CircuitBreaker) transition(to State) {
	from := b.state
	b.state = to
	b.failures = 0
	b.successes = 0
	b.logger.Info("circuit breaker state change",
		zap.String("group", b.name),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
}

// State returns the current state without advancing it.
func (b *CircuitBreaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// BreakerSnapshot is a point-in-time view of one breaker.
type BreakerSnapshot struct {
	Group       string    `json:"group"`
	State       State     `json:"state"`
	Failures    int       `json:"failure_count"`
	Successes   int       `json:"success_count"`
	LastFailure time.Time `json:"last_failure_at,omitempty"`
}

// Snapshot returns a consistent copy of the breaker counters.
func (b *CircuitBreaker) Snapshot() BreakerSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BreakerSnapshot{
		Group:       b.name,
		State:       b.state,
		Failures:    b.failures,
		Successes:   b.successes,
		LastFailure: b.lastFailure,
	}
}
