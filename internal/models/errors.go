package models

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy shared by the HTTP client, the orchestrator and the API.
var (
	// ErrRateLimitExceeded means the request was rejected before any network call.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrCircuitOpen means the request was short-circuited by an open breaker.
	ErrCircuitOpen = errors.New("circuit breaker open")
	// ErrUpstreamFailure means the catalog API failed or returned a non-2xx status.
	ErrUpstreamFailure = errors.New("upstream failure")
	// ErrNoCandidates means no product survived retrieval and filtering.
	ErrNoCandidates = errors.New("no candidates")
	// ErrInvalidInput means the query was rejected before searching.
	ErrInvalidInput = errors.New("invalid input")
)

// UpstreamError describes a failed catalog call.
type UpstreamError struct {
	Endpoint   string
	StatusCode int // 0 for transport errors
	Err        error
}

func (e *UpstreamError) Error() string {
	var b strings.Builder
	b.WriteString("upstream ")
	b.WriteString(e.Endpoint)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " returned %d", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is makes every UpstreamError match ErrUpstreamFailure.
func (e *UpstreamError) Is(target error) bool { return target == ErrUpstreamFailure }

// Retryable reports whether repeating the call may succeed: transport errors,
// 429 and 5xx responses.
func (e *UpstreamError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}

// NoCandidatesError carries alternate search terms for a query that found nothing.
type NoCandidatesError struct {
	Query       string
	Suggestions []string
}

func (e *NoCandidatesError) Error() string {
	return fmt.Sprintf("no candidates for %q", e.Query)
}

// Is makes every NoCandidatesError match ErrNoCandidates.
func (e *NoCandidatesError) Is(target error) bool { return target == ErrNoCandidates }

// IsRetryLater reports whether err is a condition the caller should retry later
// rather than show to the end user.
func IsRetryLater(err error) bool {
	return errors.Is(err, ErrRateLimitExceeded) || errors.Is(err, ErrCircuitOpen)
}
