package discovery

import (
	"context"
	"errors"
	"strings"

	"github.com/litmap/litmap/pkg/service/scholar"
)

// Classify turns a provider failure into the short message surfaced to
// users alongside a partial graph. Rate limit responses keep the
// provider's retry hint verbatim.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case scholar.IsRateLimited(err) || looksRateLimited(err):
		if hint := scholar.RetryAfter(err); hint != "" {
			return "discovery provider rate limited, retry after " + hint
		}
		return "discovery provider rate limited"

	case errors.Is(err, scholar.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return "discovery provider timed out"

	case errors.Is(err, scholar.ErrInvalidResponse):
		return "discovery provider returned a malformed response"

	default:
		return "discovery provider request failed"
	}
}

// looksRateLimited catches rate limit errors from providers that do not
// expose a typed error, such as the LLM SDK.
func looksRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(strings.ToLower(msg), "rate limit")
}
