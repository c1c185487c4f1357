package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/souq/internal/httpclient"
	"github.com/hyperjump/souq/internal/models"
	"github.com/hyperjump/souq/internal/storage"
)

// searchResponse adds the rendered text blocks to the engine response.
type searchResponse struct {
	*models.SearchResponse
	Blocks []string `json:"blocks"`
}

type errorResponse struct {
	Error      string `json:"error"`
	RetryLater bool   `json:"retry_later,omitempty"`
	RetryAfter int    `json:"retry_after_seconds,omitempty"`
}

type analyzeRequest struct {
	Query    string `json:"query"`
	Language string `json:"language,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))
	response, err := s.engine.Search(r.Context(), &query)
	switch {
	case err == nil, errors.Is(err, models.ErrNoCandidates):
		s.respondJSON(w, http.StatusOK, searchResponse{SearchResponse: response, Blocks: s.engine.Render(response)})
	case errors.Is(err, models.ErrInvalidInput):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case models.IsRetryLater(err):
		s.respondRetryLater(w, err)
	default:
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	s.respondJSON(w, http.StatusOK, s.engine.Analyze(req.Query, req.Language))
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	lang := r.URL.Query().Get("lang")

	if s.store != nil {
		p, err := s.store.GetProduct(ctx, id)
		if err == nil {
			s.respondJSON(w, http.StatusOK, p)
			return
		}
		s.logger.Debug("product not in snapshot", zap.String("id", id), zap.Error(err))
	}
	if s.products == nil {
		s.respondError(w, http.StatusNotFound, "product not found")
		return
	}

	p, err := s.products.Details(ctx, id, lang)
	var upstream *models.UpstreamError
	switch {
	case err == nil:
		s.respondJSON(w, http.StatusOK, p)
	case errors.Is(err, models.ErrInvalidInput):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case models.IsRetryLater(err):
		s.respondRetryLater(w, err)
	case errors.As(err, &upstream) && upstream.StatusCode == http.StatusNotFound:
		s.respondError(w, http.StatusNotFound, "product not found")
	default:
		s.logger.Error("product lookup failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(s.now().Sub(s.startedAt).Seconds()),
		"scoring":        s.engine.Scorer().Config(),
	}
	if s.status != nil {
		resp["catalog"] = s.status.Status()
	}
	if s.store != nil {
		n, err := s.store.CountProducts(r.Context())
		if err != nil {
			s.logger.Warn("status: count products failed", zap.Error(err))
		} else {
			resp["snapshot_products"] = n
		}
	}
	if s.snapshot != "" {
		if size, err := storage.SnapshotBytes(s.snapshot); err == nil {
			resp["snapshot_bytes"] = size
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// respondRetryLater answers 429 for rate limiting and 503 for an open breaker, with a
// Retry-After header in whole seconds.
func (s *Server) respondRetryLater(w http.ResponseWriter, err error) {
	status := http.StatusServiceUnavailable
	if errors.Is(err, models.ErrRateLimitExceeded) {
		status = http.StatusTooManyRequests
	}
	secs := retrySeconds(s.retryAfter(err))
	s.logger.Warn("retry later", zap.Int("status", status), zap.Int("retry_after", secs), zap.Error(err))
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	s.respondJSON(w, status, errorResponse{Error: err.Error(), RetryLater: true, RetryAfter: secs})
}

func (s *Server) retryAfter(err error) time.Duration {
	if s.status == nil {
		if errors.Is(err, models.ErrRateLimitExceeded) {
			return time.Second
		}
		return s.recovery
	}
	st := s.status.Status()
	if errors.Is(err, models.ErrRateLimitExceeded) {
		return st.RetryAfter
	}
	var wait time.Duration
	now := s.now()
	for _, b := range st.Breakers {
		if b.State != httpclient.StateOpen {
			continue
		}
		if d := b.LastFailure.Add(s.recovery).Sub(now); d > wait {
			wait = d
		}
	}
	if wait == 0 {
		wait = s.recovery
	}
	return wait
}

func retrySeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{Error: message})
}
