// Package tavily implements the Tavily news search client.
//
// The news stage uses it to pull recent articles for a topic. Searches
// are restricted to news results at advanced depth, matching what the
// downstream summarizer expects.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vantagehq/vantage/iox"
	"github.com/vantagehq/vantage/provider"
)

// DefaultEndpoint is the Tavily search API endpoint.
const DefaultEndpoint = "https://api.tavily.com/search"

// DefaultTimeout is the per-search request timeout.
const DefaultTimeout = 30 * time.Second

// Config configures the Tavily client.
type Config struct {
	// APIKey authenticates search requests (required).
	APIKey string
	// Endpoint overrides the API endpoint, for tests.
	Endpoint string
	// Timeout is the per-request timeout (default 30s).
	Timeout time.Duration
}

// Client is a Tavily search API client.
type Client struct {
	cfg    Config
	client *http.Client
}

// New creates a Tavily client. Returns an error if the API key is empty.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("tavily client requires an API key")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Result is one article returned by a search.
type Result struct {
	Title   string
	URL     string
	Content string
}

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
	MaxResults    int    `json:"max_results"`
	Topic         string `json:"topic"`
}

type searchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
		Snippet string `json:"snippet"`
	} `json:"results"`
}

// Search returns up to maxResults recent news articles for the query.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	body, err := json.Marshal(searchRequest{
		APIKey:      c.cfg.APIKey,
		Query:       query,
		SearchDepth: "advanced",
		MaxResults:  maxResults,
		Topic:       "news",
	})
	if err != nil {
		return nil, fmt.Errorf("tavily: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tavily: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily: request failed: %w", err)
	}
	defer iox.DrainClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &provider.StatusError{Provider: "tavily", Code: resp.StatusCode}
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("tavily: decode response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		title := r.Title
		if title == "" {
			title = "No title"
		}
		source := r.URL
		if source == "" {
			source = "Unknown source"
		}
		content := r.Content
		if content == "" {
			content = r.Snippet
		}
		results = append(results, Result{Title: title, URL: source, Content: content})
	}
	return results, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
