package scholar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/litmap/litmap/pkg/domain/types"
	"github.com/litmap/litmap/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Semantic Scholar Graph API base URL
	BaseURL = "https://api.semanticscholar.org/graph/v1"

	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second

	// RateLimit is 1 request per second for unauthenticated access
	RateLimit = 1.0

	// referenceFields are the fields requested for reference lookups
	referenceFields = "references.title,references.externalIds,references.url"
)

// Reference is one entry of a paper's reference list
type Reference struct {
	ArxivID types.PaperID
	Title   string
	URL     string
}

// Client is a rate-limited client for the Semantic Scholar Graph API
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
}

// Option configures a Client
type Option func(*Client)

// WithAPIKey sets the API key for higher rate limits
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing)
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithRateLimit overrides the request rate
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// New creates a new Semantic Scholar API client
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
	}

	if key := os.Getenv("SEMANTIC_SCHOLAR_API_KEY"); key != "" {
		c.apiKey = key
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type referencesResponse struct {
	References []struct {
		Title       string            `json:"title"`
		URL         string            `json:"url"`
		// Values are mixed types (CorpusId is numeric), so decode loosely
		ExternalIDs map[string]any `json:"externalIds"`
	} `json:"references"`
}

// References retrieves the reference list of an arXiv paper. Only
// references that are themselves arXiv papers are returned.
func (c *Client) References(ctx context.Context, id types.PaperID) ([]Reference, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, goerr.Wrap(err, "canceled while waiting for scholar rate limit")
	}

	reqURL := c.baseURL + "/paper/ArXiv:" + url.PathEscape(id.String()) + "?fields=" + url.QueryEscape(referenceFields)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build scholar request")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, goerr.Wrap(ErrTimeout, "request to scholar timed out", goerr.V(types.PaperIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to query scholar API", goerr.V(types.PaperIDKey, id))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.Wrap(&APIError{
			StatusCode: resp.StatusCode,
			RetryAfter: resp.Header.Get("Retry-After"),
		}, "scholar request failed", goerr.V(types.PaperIDKey, id))
	}

	var body referencesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, goerr.Wrap(ErrInvalidResponse, "failed to decode scholar response",
			goerr.V(types.PaperIDKey, id), goerr.V("cause", err.Error()))
	}

	refs := make([]Reference, 0, len(body.References))
	for _, r := range body.References {
		arxivID, ok := r.ExternalIDs["ArXiv"].(string)
		if !ok || arxivID == "" {
			continue
		}
		refs = append(refs, Reference{
			ArxivID: types.CanonicalPaperID(arxivID),
			Title:   r.Title,
			URL:     r.URL,
		})
	}

	return refs, nil
}
