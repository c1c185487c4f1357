// Package httpclient calls the remote catalog API through a signed, cached,
// rate-limited and circuit-broken request path.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/souq/internal/cache"
	"github.com/hyperjump/souq/internal/models"
)

const (
	defaultGroup   = "default"
	maxBodyBytes   = 10 << 20
	errorBodyBytes = 256
)

// Request is one logical catalog call.
type Request struct {
	Method   string
	Path     string
	Query    url.Values
	Body     any // encoded as JSON when non-nil
	Language string
	// Group selects the circuit breaker. Endpoints that fail together share a group.
	Group string
	Cache cache.Strategy
}

func (r Request) group() string {
	if r.Group == "" {
		return defaultGroup
	}
	return r.Group
}

// Client is safe for concurrent use. Construct one per process and share it.
type Client struct {
	baseURL    *url.URL
	http       *http.Client
	signer     *Signer
	cache      cache.Cache
	ttls       cache.TTLs
	limiter    *RateLimiter
	breakerCfg BreakerConfig
	retry      RetryPolicy
	logger     *zap.Logger
	now        func() time.Time
	sleep      func(context.Context, time.Duration) error

	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithSigner signs every request.
func WithSigner(s *Signer) Option {
	return func(c *Client) { c.signer = s }
}

// WithCache sets the response cache and the strategy durations.
func WithCache(cc cache.Cache, ttls cache.TTLs) Option {
	return func(c *Client) {
		if cc != nil {
			c.cache = cc
			c.ttls = ttls
		}
	}
}

// WithRateLimiter replaces the default 60-per-minute limiter.
func WithRateLimiter(l *RateLimiter) Option {
	return func(c *Client) {
		if l != nil {
			c.limiter = l
		}
	}
}

// WithBreakerConfig sets the thresholds for every breaker group.
func WithBreakerConfig(cfg BreakerConfig) Option {
	return func(c *Client) { c.breakerCfg = cfg }
}

// WithRetryPolicy sets the backoff policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock sets the time source used by the breakers, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSleep replaces the backoff sleep, for tests.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// New creates a Client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	c := &Client{
		baseURL:    u,
		http:       &http.Client{Timeout: 15 * time.Second},
		cache:      cache.NewMemoryCache(1000),
		ttls:       cache.DefaultTTLs(),
		breakerCfg: DefaultBreakerConfig(),
		retry:      DefaultRetryPolicy(),
		logger:     zap.NewNop(),
		now:        time.Now,
		sleep:      sleepContext,
		breakers:   make(map[string]*CircuitBreaker),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.limiter == nil {
		c.limiter = NewRateLimiter(60, time.Minute, c.now)
	}
	return c, nil
}

// Do runs one logical call: cache lookup, rate-limit admission, breaker check, the retry
// loop, then cache store. Errors are *models.UpstreamError or wrap ErrRateLimitExceeded
// or ErrCircuitOpen. A panic anywhere on the path is returned as an UpstreamError.
func (c *Client) Do(ctx context.Context, req Request) (body []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic in catalog call", zap.String("endpoint", req.Path), zap.Any("panic", r))
			body = nil
			err = &models.UpstreamError{Endpoint: req.Path, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if req.Method == "" {
		req.Method = http.MethodGet
	}
	var payload []byte
	if req.Body != nil {
		payload, err = json.Marshal(req.Body)
		if err != nil {
			return nil, &models.UpstreamError{Endpoint: req.Path, Err: fmt.Errorf("encode body: %w", err)}
		}
	}

	ttl := c.ttls.For(req.Cache)
	key := cache.Key(req.Method, req.Path, req.Query.Encode(), string(payload), req.Language)
	if ttl > 0 {
		if cached, cerr := c.cache.Get(ctx, key); cerr == nil {
			c.logger.Debug("cache hit", zap.String("endpoint", req.Path))
			return cached, nil
		}
	}

	if !c.limiter.Allow() {
		c.logger.Warn("rate limit exceeded", zap.String("endpoint", req.Path))
		return nil, fmt.Errorf("%s: %w", req.Path, models.ErrRateLimitExceeded)
	}

	br := c.Breaker(req.group())
	if berr := br.Allow(); berr != nil {
		return nil, fmt.Errorf("%s: %w", req.Path, berr)
	}

	body, err = c.doWithRetry(ctx, req, payload)
	c.record(br, err)
	if err != nil {
		return nil, err
	}

	if ttl > 0 {
		if cerr := c.cache.Set(ctx, key, body, ttl); cerr != nil {
			c.logger.Warn("cache set failed", zap.Error(cerr))
		}
	}
	return body, nil
}

// record feeds the outcome of one logical call to its breaker. Caller cancellation says
// nothing about the upstream and is not recorded; a 4xx other than 429 proves the
// upstream is answering.
func (c *Client) record(br *CircuitBreaker, err error) {
	if err == nil {
		br.RecordSuccess()
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	var ue *models.UpstreamError
	if errors.As(err, &ue) && ue.StatusCode != 0 && !ue.Retryable() {
		br.RecordSuccess()
		return
	}
	br.RecordFailure()
}

func (c *Client) doWithRetry(ctx context.Context, req Request, payload []byte) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		body, err := c.once(ctx, req, payload)
		if err == nil {
			return body, nil
		}

		var ue *models.UpstreamError
		retryable := errors.As(err, &ue) && ue.Retryable() && ctx.Err() == nil
		if !retryable || attempt >= c.retry.MaxRetries {
			return nil, err
		}

		delay := c.retry.Delay(attempt)
		c.logger.Debug("retrying catalog call",
			zap.String("endpoint", req.Path),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))
		if serr := c.sleep(ctx, delay); serr != nil {
			return nil, &models.UpstreamError{Endpoint: req.Path, Err: serr}
		}
	}
}

func (c *Client) once(ctx context.Context, req Request, payload []byte) ([]byte, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(req.Path, "/")
	u.RawQuery = req.Query.Encode()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, &models.UpstreamError{Endpoint: req.Path, Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Language != "" {
		httpReq.Header.Set("Accept-Language", req.Language)
	}
	if c.signer != nil {
		c.signer.Sign(httpReq)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &models.UpstreamError{Endpoint: req.Path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &models.UpstreamError{Endpoint: req.Path, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(data))
		if len(snippet) > errorBodyBytes {
			snippet = snippet[:errorBodyBytes]
		}
		return nil, &models.UpstreamError{Endpoint: req.Path, StatusCode: resp.StatusCode, Err: errors.New(snippet)}
	}
	return data, nil
}

// Breaker returns the breaker for group, creating it on first use.
func (c *Client) Breaker(group string) *CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	br, ok := c.breakers[group]
	if !ok {
		br = NewCircuitBreaker(group, c.breakerCfg, c.logger, c.now)
		c.breakers[group] = br
	}
	return br
}

// Status is a snapshot of the client's shared state.
type Status struct {
	Breakers   []BreakerSnapshot `json:"breakers"`
	RateUsed   int               `json:"rate_used"`
	RateLimit  int               `json:"rate_limit"`
	RetryAfter time.Duration     `json:"retry_after_ns"`
	Cache      *cache.Stats      `json:"cache,omitempty"`
}

// Status reports breaker states, rate-window usage and cache counters.
func (c *Client) Status() Status {
	c.mu.Lock()
	snaps := make([]BreakerSnapshot, 0, len(c.breakers))
	for _, br := range c.breakers {
		snaps = append(snaps, br.Snapshot())
	}
	c.mu.Unlock()
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Group < snaps[j].Group })

	used, limit := c.limiter.Usage()
	st := Status{Breakers: snaps, RateUsed: used, RateLimit: limit, RetryAfter: c.limiter.RetryAfter()}
	if sp, ok := c.cache.(interface{ Stats() cache.Stats }); ok {
		s := sp.Stats()
		st.Cache = &s
	}
	return st
}

// Close releases the cache.
func (c *Client) Close() error {
	return c.cache.Close()
}
