package scholar

import (
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

// Common errors returned by the Semantic Scholar client
var (
	// ErrNotFound indicates the paper is not indexed
	ErrNotFound = goerr.New("paper not found in Semantic Scholar")

	// ErrRateLimited indicates the rate limit has been exceeded
	ErrRateLimited = goerr.New("Semantic Scholar rate limit exceeded")

	// ErrTimeout indicates the request exceeded the client timeout
	ErrTimeout = goerr.New("Semantic Scholar request timed out")

	// ErrAPIError indicates a general API error
	ErrAPIError = goerr.New("Semantic Scholar API error")

	// ErrInvalidResponse indicates an unexpected response body
	ErrInvalidResponse = goerr.New("invalid response from Semantic Scholar")
)

// APIError carries the HTTP details of a failed request
type APIError struct {
	StatusCode int
	RetryAfter string // Verbatim Retry-After header value, empty if absent
}

func (e *APIError) Error() string {
	if e.RetryAfter != "" {
		return fmt.Sprintf("Semantic Scholar API error (status %d, retry after %s)", e.StatusCode, e.RetryAfter)
	}
	return fmt.Sprintf("Semantic Scholar API error (status %d)", e.StatusCode)
}

// Unwrap maps the status code to the matching sentinel so callers can use
// errors.Is without inspecting status codes.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 404:
		return ErrNotFound
	case 429:
		return ErrRateLimited
	default:
		return ErrAPIError
	}
}

// IsRateLimited returns true if the error indicates rate limiting
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// RetryAfter extracts the Retry-After header value from a rate limit
// error. Returns empty when unknown.
func RetryAfter(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.RetryAfter
	}
	return ""
}
