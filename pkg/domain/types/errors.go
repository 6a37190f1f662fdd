package types

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared across layers. The HTTP controller maps these to
// response status codes; everything else wraps them with goerr values.
var (
	// Input validation
	ErrInvalidPaperLink = goerr.New("a valid arXiv link or ID is required")
	ErrInvalidSessionID = goerr.New("invalid session ID format")
	ErrInvalidUserID    = goerr.New("user ID is required")
	ErrInvalidMode      = goerr.New("invalid discovery mode")

	// Not found
	ErrPaperNotFound   = goerr.New("no paper found for ID")
	ErrSessionNotFound = goerr.New("session not found")

	// Provider failures
	ErrSeedFetchFailed = goerr.New("failed to fetch seed paper")
	ErrEmbeddingFailed = goerr.New("failed to generate embeddings")
)

// Context keys for error values
const (
	PaperIDKey   = "paper_id"
	SessionIDKey = "session_id"
	UserIDKey    = "user_id"
	ModeKey      = "mode"
)
