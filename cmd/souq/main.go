// Package main is the Souq CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/souq/internal/cache"
	"github.com/hyperjump/souq/internal/catalog"
	"github.com/hyperjump/souq/internal/cli"
	"github.com/hyperjump/souq/internal/config"
	"github.com/hyperjump/souq/internal/httpclient"
	"github.com/hyperjump/souq/internal/models"
	"github.com/hyperjump/souq/internal/ranking"
	"github.com/hyperjump/souq/internal/search"
	"github.com/hyperjump/souq/internal/server"
	"github.com/hyperjump/souq/internal/storage"
	"github.com/hyperjump/souq/internal/watcher"
	"github.com/hyperjump/souq/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/souq/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "snapshot":
		runSnapshot()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("souq version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (catalog calls, breaker transitions, scoring)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid config", zap.String("config_path", resolvedConfigPath), zap.Error(err))
	}
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
		zap.String("catalog", cfg.Catalog.BaseURL),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Watch.EnabledOrDefault() {
		reloader := watcher.NewConfigReloader(cfg, components.Engine.Scorer(), logger)
		watchSvc := watcher.NewWatcher(
			[]string{resolvedConfigPath},
			reloader.OnChange,
			func(path string) {
				logger.Warn("config file removed; keeping current settings", zap.String("path", path))
			},
			watcher.WithLogger(logger),
			watcher.WithDebounce(cfg.Watch.Debounce),
		)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Warn("config watch disabled", zap.String("path", resolvedConfigPath), zap.Error(err))
		} else {
			defer watchSvc.Stop()
		}
	}

	opts := []server.Option{
		server.WithStatus(components.HTTP),
		server.WithProductLookup(components.Catalog),
		server.WithRecoveryTimeout(cfg.Breaker.RecoveryTimeout),
	}
	if components.Storage != nil {
		opts = append(opts,
			server.WithProductStore(components.Storage),
			server.WithSnapshotPath(cfg.Storage.SnapshotPath),
		)
	}
	srv := server.NewServer(components.Engine, &cfg.Server, logger, opts...)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: souq search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Queries may be Egyptian Arabic, English or a mix of both. Price, occasion, season,
quality and "complete outfit" wishes are read from the query itself.
  • Use --lang to force the reply language (ar or en); otherwise it follows the query.
  • Use --server "" to call the catalog directly when no server is running.

Examples:
  souq search عايز فستان للفرح صيفي ومش غالي
  souq search "summer dress under 500"
  souq search --limit 10 --lang en جزمه رياضي
  souq search --output json "black abaya"
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchConfigPathFromArgs returns the value of -config/--config from args if present, else defaultPath.
func searchConfigPathFromArgs(args []string, defaultPath string) string {
	for i, a := range args {
		if (a == "-config" || a == "--config") && i+1 < len(args) {
			return args[i+1]
		}
	}
	return defaultPath
}

// searchLimitDefaultFromConfig loads config at path and returns its default result
// limit, or 5 when the config cannot be loaded.
func searchLimitDefaultFromConfig(path string) int {
	cfg, _, err := loadConfig(path)
	if err != nil || cfg == nil {
		return 5
	}
	return cfg.Search.DefaultLimit
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "souq search فستان -limit 3" would
// otherwise leave -limit unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch() {
	searchArgs := searchArgsReorder(os.Args[2:])
	configPath := searchConfigPathFromArgs(searchArgs, defaultConfigPath)

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = call the catalog directly)")
	limit := fs.Int("limit", searchLimitDefaultFromConfig(configPath), "number of results")
	lang := fs.String("lang", "", "reply language: ar or en (default: detected from the query)")
	outputFormat := fs.String("output", "text", "output format: text (chat blocks) or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	if fs.NArg() < 1 {
		printSearchUsage(fs)
		os.Exit(1)
	}
	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	searchQuery := &models.SearchQuery{
		Query:    queryStr,
		Limit:    *limit,
		Language: *lang,
	}

	if *serverURL != "" {
		out, err := searchViaHTTP(*serverURL, searchQuery)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteSearchResults(os.Stdout, out, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Direct catalog access (when server is not running).
	cfg, _, err := loadConfig(*configPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	response, err := components.Engine.Search(context.Background(), searchQuery)
	if err != nil && !isNoCandidates(err) {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	out := &cli.SearchOutput{SearchResponse: response, Blocks: components.Engine.Render(response)}
	if err := cli.WriteSearchResults(os.Stdout, out, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func isNoCandidates(err error) bool {
	return errors.Is(err, models.ErrNoCandidates)
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*cli.SearchOutput, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		if after := resp.Header.Get("Retry-After"); after != "" {
			return nil, fmt.Errorf("server returned %d (retry after %ss): %s", resp.StatusCode, after, strings.TrimSpace(string(b)))
		}
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var out cli.SearchOutput
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Status           string                 `json:"status"`
	UptimeSeconds    int64                  `json:"uptime_seconds"`
	Scoring          *ranking.ScoringConfig `json:"scoring,omitempty"`
	Catalog          *httpclient.Status     `json:"catalog,omitempty"`
	SnapshotProducts *int64                 `json:"snapshot_products,omitempty"`
	SnapshotBytes    *int64                 `json:"snapshot_bytes,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = read the local snapshot)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{Status: "offline", Scoring: &cfg.Scoring}
		store, err := storage.NewSQLiteStorage(cfg.Storage.SnapshotPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Open snapshot failed: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		n, err := store.CountProducts(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count products failed: %v\n", err)
			os.Exit(1)
		}
		status.SnapshotProducts = &n
		if size, err := storage.SnapshotBytes(cfg.Storage.SnapshotPath); err == nil {
			status.SnapshotBytes = &size
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		writeStatusText(os.Stdout, &status)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func writeStatusText(w io.Writer, status *statusResponse) {
	fmt.Fprintf(w, "status:             %s\n", status.Status)
	if status.UptimeSeconds > 0 {
		fmt.Fprintf(w, "uptime_seconds:     %d\n", status.UptimeSeconds)
	}
	if status.SnapshotProducts != nil {
		fmt.Fprintf(w, "snapshot_products:  %d   # products in the local snapshot\n", *status.SnapshotProducts)
	}
	if status.SnapshotBytes != nil {
		fmt.Fprintf(w, "snapshot_bytes:     %d\n", *status.SnapshotBytes)
	}
	if c := status.Catalog; c != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# catalog")
		fmt.Fprintf(w, "rate_window:        %d/%d\n", c.RateUsed, c.RateLimit)
		for _, b := range c.Breakers {
			fmt.Fprintf(w, "breaker %-11s %s (failures %d)\n", b.Group+":", b.State, b.Failures)
		}
		if c.Cache != nil {
			fmt.Fprintf(w, "cache:              %d/%d entries, hit ratio %.2f\n", c.Cache.Size, c.Cache.Capacity, c.Cache.HitRatio())
		}
	}
	if s := status.Scoring; s != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# scoring")
		fmt.Fprintf(w, "base_score:         %.2f\n", s.BaseScore)
		fmt.Fprintf(w, "min_score:          %.2f\n", s.MinScore)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// runSnapshot copies catalog products into the local snapshot database used for
// product lookups and offline status.
func runSnapshot() {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	lang := fs.String("lang", "ar", "catalog language")
	pages := fs.Int("pages", 5, "maximum filter pages to copy")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()
	if components.Storage == nil {
		fmt.Println("Snapshot storage is not available")
		os.Exit(1)
	}

	saved, err := copySnapshot(context.Background(), components.Catalog, components.Storage, *lang, *pages)
	if err != nil {
		fmt.Printf("Snapshot failed after %d product(s): %v\n", saved, err)
		os.Exit(1)
	}
	fmt.Printf("Saved %d product(s) to %s\n", saved, cfg.Storage.SnapshotPath)
}

type snapshotSource interface {
	Popular(ctx context.Context, lang string) ([]*models.Candidate, error)
	Filter(ctx context.Context, params catalog.FilterParams, lang string) (*catalog.Page, error)
}

type snapshotSink interface {
	SaveProducts(ctx context.Context, products []*models.Candidate) (int, error)
}

// copySnapshot saves the popular listing and up to maxPages unfiltered pages. It stops
// early on the last page and returns how many products were saved.
func copySnapshot(ctx context.Context, src snapshotSource, dst snapshotSink, lang string, maxPages int) (int, error) {
	saved := 0
	popular, err := src.Popular(ctx, lang)
	if err != nil {
		return saved, fmt.Errorf("popular products: %w", err)
	}
	n, err := dst.SaveProducts(ctx, popular)
	saved += n
	if err != nil {
		return saved, err
	}
	for page := 1; page <= maxPages; page++ {
		p, err := src.Filter(ctx, catalog.FilterParams{Page: page}, lang)
		if err != nil {
			return saved, fmt.Errorf("page %d: %w", page, err)
		}
		n, err := dst.SaveProducts(ctx, p.Products)
		saved += n
		if err != nil {
			return saved, err
		}
		if len(p.Products) == 0 || (p.Pagination.TotalPages > 0 && page >= p.Pagination.TotalPages) {
			break
		}
	}
	return saved, nil
}

// Components holds initialized services.
type Components struct {
	HTTP    *httpclient.Client
	Catalog *catalog.Client
	Engine  *search.Engine
	Storage storage.Storage
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.HTTP != nil {
		_ = c.HTTP.Close()
	}
}

// newResponseCache builds the in-process cache, layered over Redis when configured.
// An unreachable Redis falls back to the local cache alone.
func newResponseCache(cfg *config.CacheConfig, logger *zap.Logger) cache.Cache {
	local := cache.NewMemoryCache(cfg.Capacity, cache.WithLogger(logger))
	if !cfg.Redis.Enabled() {
		return local
	}
	remote, err := cache.NewRedisCache(context.Background(), cfg.Redis)
	if err != nil {
		logger.Warn("redis cache unavailable, using memory cache only",
			zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		return local
	}
	logger.Info("redis cache connected", zap.String("addr", cfg.Redis.Addr))
	return cache.NewTiered(local, remote, cfg.ShortTTL, logger)
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	if cfg.Catalog.BaseURL == "" {
		return nil, fmt.Errorf("catalog.base_url is required (or set %s)", config.EnvCatalogBaseURL)
	}

	clientOpts := []httpclient.Option{
		httpclient.WithCache(newResponseCache(&cfg.Cache, logger), cfg.Cache.TTLs()),
		httpclient.WithRateLimiter(httpclient.NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window, nil)),
		httpclient.WithBreakerConfig(cfg.Breaker),
		httpclient.WithRetryPolicy(cfg.Retry),
		httpclient.WithTimeout(cfg.Catalog.Timeout),
		httpclient.WithLogger(logger),
	}
	if cfg.Catalog.Secret != "" {
		clientOpts = append(clientOpts, httpclient.WithSigner(httpclient.NewSigner(
			cfg.Catalog.Secret,
			cfg.Catalog.SignatureHeader,
			cfg.Catalog.OffsetHoursOrDefault(),
			nil,
		)))
	} else {
		logger.Warn("catalog secret not set; requests are unsigned", zap.String("env", config.EnvCatalogSecret))
	}
	hc, err := httpclient.New(cfg.Catalog.BaseURL, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize catalog client: %w", err)
	}

	cat := catalog.NewClient(hc, catalog.Config{
		StorefrontURL:   cfg.Catalog.StorefrontURL,
		PageSize:        cfg.Catalog.PageSize,
		PopularPageSize: cfg.Catalog.PopularPageSize,
	}, logger)

	scorer := ranking.NewScorer(&cfg.Scoring, logger)
	engine := search.NewEngine(cat, scorer, &cfg.Search,
		search.WithLogger(logger),
		search.WithProductURL(cat.ProductURL),
	)

	components := &Components{HTTP: hc, Catalog: cat, Engine: engine}

	// The snapshot only serves product lookups and status, so search keeps working
	// without it.
	if cfg.Storage.SnapshotPath != "" {
		store, err := storage.NewSQLiteStorage(cfg.Storage.SnapshotPath)
		if err != nil {
			logger.Warn("snapshot storage unavailable", zap.String("path", cfg.Storage.SnapshotPath), zap.Error(err))
		} else {
			components.Storage = store
		}
	}
	return components, nil
}

func printUsage() {
	fmt.Println(`souq - Egyptian Arabic and English product search

Usage:
  souq server [flags]           Start the HTTP server
  souq search [flags] <query>   Search the catalog
  souq snapshot [flags]         Copy catalog products into the local snapshot
  souq status [flags]           Show catalog client and snapshot status
  souq version                  Show version
  souq help                     Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/souq/config.yaml)
  --debug            Enable debug logging

Search Flags:
  --config string    Config file path (for direct mode; also used for the default limit)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to call the catalog directly.
  --limit int        Number of results (default from config, or 5)
  --lang string      Reply language: ar or en (default: detected from the query)
  --output string    Output format: text or json (default: text)

Snapshot Flags:
  --config string    Config file path
  --lang string      Catalog language (default: ar)
  --pages int        Maximum filter pages to copy (default: 5)

Status Flags:
  --config string    Config file path (for offline mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to read the snapshot.
  --output string    Output format: text or json (default: text)

Environment:
  SOUQ_CATALOG_SECRET     Shared secret for request signatures
  SOUQ_CATALOG_BASE_URL   Overrides catalog.base_url

Examples:
  souq server
  souq search عايز طقم كامل للفرح صيفي ومش غالي
  souq search --lang en "cheap summer dress"
  souq search --output json "فستان سواريه"
  souq snapshot --pages 10
  souq status --output json`)
}
