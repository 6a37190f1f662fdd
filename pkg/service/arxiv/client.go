package arxiv

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/litmap/litmap/pkg/domain/interfaces"
	"github.com/litmap/litmap/pkg/domain/model"
	"github.com/litmap/litmap/pkg/domain/types"
	"github.com/litmap/litmap/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the arXiv Atom API endpoint
	BaseURL = "https://export.arxiv.org/api/query"

	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second

	// requestInterval follows the arXiv API usage policy of one request
	// every three seconds.
	requestInterval = 3 * time.Second
)

// Client is a rate-limited client for the arXiv Atom API
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

var _ interfaces.PaperSource = &Client{}

// Option configures a Client
type Option func(*Client)

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

// WithRequestInterval overrides the minimum interval between requests
func WithRequestInterval(d time.Duration) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// New creates a new arXiv API client
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(requestInterval), 1),
		baseURL:    BaseURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) query(ctx context.Context, params url.Values) ([]*model.Paper, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, goerr.Wrap(err, "canceled while waiting for arxiv rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build arxiv request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query arxiv API")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status from arxiv API",
			goerr.V("status", resp.StatusCode),
			goerr.V("query", params.Encode()))
	}

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, goerr.Wrap(err, "failed to parse arxiv Atom feed")
	}

	feed := doc.SelectElement("feed")
	if feed == nil {
		return nil, goerr.New("arxiv response has no feed element")
	}

	papers := make([]*model.Paper, 0)
	for _, entry := range feed.SelectElements("entry") {
		paper := parseEntry(entry)
		if paper == nil {
			continue
		}
		papers = append(papers, paper)
	}

	return papers, nil
}

// parseEntry converts an Atom entry to a Paper. Returns nil for
// placeholder entries the API emits for unknown IDs.
func parseEntry(entry *etree.Element) *model.Paper {
	title := elementText(entry, "title")
	if title == "" || strings.HasPrefix(title, "Error") {
		return nil
	}

	entryURL := elementText(entry, "id")
	id := types.CanonicalPaperID(entryURL)
	if id == "" {
		return nil
	}

	var authors []string
	for _, author := range entry.SelectElements("author") {
		if name := elementText(author, "name"); name != "" {
			authors = append(authors, name)
		}
	}

	published := elementText(entry, "published")
	if len(published) >= 10 {
		published = published[:10]
	}

	return model.NewPaper(id, title, elementText(entry, "summary"), entryURL, published, authors)
}

func elementText(parent *etree.Element, name string) string {
	e := parent.SelectElement(name)
	if e == nil {
		return ""
	}
	return strings.Join(strings.Fields(e.Text()), " ")
}

// Fetch retrieves metadata for a single paper by canonical ID
func (c *Client) Fetch(ctx context.Context, id types.PaperID) (*model.Paper, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("id_list", id.String())
	params.Set("max_results", "1")

	papers, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(papers) == 0 {
		return nil, goerr.Wrap(types.ErrPaperNotFound, "arxiv has no entry for ID", goerr.V(types.PaperIDKey, id))
	}

	return papers[0], nil
}

// FetchBatch retrieves metadata for multiple papers in a single request.
// Unknown IDs are absent from the result.
func (c *Client) FetchBatch(ctx context.Context, ids []types.PaperID) (map[types.PaperID]*model.Paper, error) {
	result := make(map[types.PaperID]*model.Paper, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	idList := make([]string, 0, len(ids))
	for _, id := range ids {
		idList = append(idList, id.String())
	}

	params := url.Values{}
	params.Set("id_list", strings.Join(idList, ","))
	params.Set("max_results", strconv.Itoa(len(ids)))

	papers, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}

	for _, p := range papers {
		result[p.ID] = p
	}

	return result, nil
}

// Search runs a free-text query against the catalog
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]*model.Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, goerr.New("search query is empty")
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("max_results", strconv.Itoa(maxResults))

	return c.query(ctx, params)
}
