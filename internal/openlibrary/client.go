package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// docFields limits search responses to the fields the pipeline consumes.
const docFields = "key,title,author_name,first_publish_year,isbn,subject,edition_key"

// Doc represents a single search candidate. Candidates arrive in the
// service's relevance order.
type Doc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	ISBN             []string `json:"isbn"`
	Subject          []string `json:"subject"`
	EditionKey       []string `json:"edition_key"`
}

// Response models the Open Library search payload.
type Response struct {
	NumFound int   `json:"numFound"`
	Start    int   `json:"start"`
	Docs     []Doc `json:"docs"`
}

// Searcher defines the search operations the enrichment pipeline uses.
type Searcher interface {
	SearchBooks(ctx context.Context, title, author string) (*Response, error)
	SearchISBN(ctx context.Context, isbn string) (*Response, error)
}

// Client provides access to the Open Library search API.
type Client struct {
	baseURL    string
	maxResults int
	httpClient *http.Client
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates an Open Library client.
func New(baseURL string, maxResults int, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("open library base url required")
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchBooks searches by title and author. Zero results is a valid,
// non-error response.
func (c *Client) SearchBooks(ctx context.Context, title, author string) (*Response, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	if title == "" {
		return nil, errors.New("title must not be empty")
	}
	params := url.Values{}
	params.Set("title", title)
	if author != "" {
		params.Set("author", author)
	}
	return c.search(ctx, params)
}

// SearchISBN searches for a specific edition by ISBN.
func (c *Client) SearchISBN(ctx context.Context, isbn string) (*Response, error) {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return nil, errors.New("isbn must not be empty")
	}
	params := url.Values{}
	params.Set("q", "isbn:"+isbn)
	return c.search(ctx, params)
}

func (c *Client) search(ctx context.Context, params url.Values) (*Response, error) {
	endpoint, err := url.Parse(c.baseURL + "/search.json")
	if err != nil {
		return nil, fmt.Errorf("parse open library url: %w", err)
	}
	params.Set("limit", strconv.Itoa(c.maxResults))
	params.Set("fields", docFields)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open library search returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode open library response: %w", err)
	}
	return &payload, nil
}
