// Package server provides the HTTP API for souq.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/souq/internal/config"
	"github.com/hyperjump/souq/internal/httpclient"
	"github.com/hyperjump/souq/internal/models"
	"github.com/hyperjump/souq/internal/search"
)

// StatusProvider reports the shared state of the catalog client.
type StatusProvider interface {
	Status() httpclient.Status
}

// ProductStore is the local product snapshot.
type ProductStore interface {
	GetProduct(ctx context.Context, id string) (*models.Candidate, error)
	CountProducts(ctx context.Context) (int64, error)
}

// ProductLookup fetches one product from the live catalog.
type ProductLookup interface {
	Details(ctx context.Context, id, lang string) (*models.Candidate, error)
}

// Server is the HTTP server for the souq API.
type Server struct {
	engine    *search.Engine
	config    *config.ServerConfig
	logger    *zap.Logger
	status    StatusProvider
	store     ProductStore
	products  ProductLookup
	snapshot  string
	recovery  time.Duration
	now       func() time.Time
	startedAt time.Time
	server    *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithStatus exposes catalog client state on /api/v1/status and sizes Retry-After headers.
func WithStatus(p StatusProvider) Option {
	return func(s *Server) { s.status = p }
}

// WithProductStore serves product lookups from a local snapshot first.
func WithProductStore(store ProductStore) Option {
	return func(s *Server) { s.store = store }
}

// WithSnapshotPath reports the size of the snapshot database on /api/v1/status.
func WithSnapshotPath(path string) Option {
	return func(s *Server) { s.snapshot = path }
}

// WithProductLookup serves product lookups missing from the snapshot from the catalog.
func WithProductLookup(l ProductLookup) Option {
	return func(s *Server) { s.products = l }
}

// WithRecoveryTimeout is the breaker recovery timeout used to size Retry-After on 503.
func WithRecoveryTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.recovery = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// NewServer creates a server with the given dependencies.
func NewServer(engine *search.Engine, cfg *config.ServerConfig, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine:   engine,
		config:   cfg,
		logger:   logger,
		recovery: httpclient.DefaultBreakerConfig().RecoveryTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startedAt = s.now()
	return s
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/search", s.handleSearch)
	r.Post("/api/v1/analyze", s.handleAnalyze)
	r.Get("/api/v1/products/{id}", s.handleGetProduct)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
