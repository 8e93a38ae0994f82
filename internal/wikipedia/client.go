package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the MediaWiki Action API endpoint for English Wikipedia.
	DefaultBaseURL = "https://en.wikipedia.org/w/api.php"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 15 * time.Second

	// DefaultUserAgent identifies the client per the Wikimedia API etiquette.
	DefaultUserAgent = "Rota Automotive Assistant/1.0 (https://github.com/ternarybob/rota)"

	// DefaultFetchDelay is the minimum spacing between content fetches,
	// keeping the client inside Wikipedia's informal rate expectations.
	DefaultFetchDelay = 500 * time.Millisecond
)

// Client is a MediaWiki Action API client.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom API endpoint (used by tests and non-English wikis).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent sets a custom identifying User-Agent string.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithFetchDelay sets the minimum spacing between content fetch requests.
func WithFetchDelay(delay time.Duration) ClientOption {
	return func(c *Client) {
		if delay <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
}

// NewClient creates a new MediaWiki API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(DefaultFetchDelay), 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Search performs a full-text search and returns up to limit ranked hits.
// An empty hit list with a nil error means the term matched nothing.
func (c *Client) Search(ctx context.Context, term string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", term)
	params.Set("srlimit", fmt.Sprintf("%d", limit))
	params.Set("utf8", "1")

	var result searchResponse
	if err := c.get(ctx, "query/search", params, &result); err != nil {
		return nil, err
	}

	if result.Error != nil {
		return nil, &APIError{Code: result.Error.Code, Info: result.Error.Info, Endpoint: "query/search"}
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("term", term).
			Int("hits", len(result.Query.Search)).
			Msg("Wikipedia search completed")
	}

	return result.Query.Search, nil
}

// ParsePage fetches the rendered HTML body and raw wikitext for a page
// title, following redirects. The call waits on the client's rate limiter
// first so that consecutive content fetches stay spaced apart.
func (c *Client) ParsePage(ctx context.Context, title string) (*Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("action", "parse")
	params.Set("page", title)
	params.Set("prop", "text|wikitext")
	params.Set("redirects", "1")

	var result parseResponse
	if err := c.get(ctx, "parse", params, &result); err != nil {
		return nil, err
	}

	if result.Error != nil {
		return nil, &APIError{Code: result.Error.Code, Info: result.Error.Info, Endpoint: "parse"}
	}

	page := &Page{
		Title:    result.Parse.Title,
		HTML:     result.Parse.Text.Content,
		Wikitext: result.Parse.Wikitext.Content,
	}
	if page.Title == "" {
		page.Title = title
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("title", page.Title).
			Int("html_size", len(page.HTML)).
			Int("wikitext_size", len(page.Wikitext)).
			Msg("Wikipedia page fetched")
	}

	return page, nil
}

// get performs a GET request against the API and decodes the JSON body.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	params.Set("format", "json")

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}

	if apiErr := decodeAPIError(body, endpoint); apiErr != nil {
		return apiErr
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
