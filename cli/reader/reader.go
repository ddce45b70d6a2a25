// Package reader is the HTTP client CLI commands use to talk to a
// running vantage gateway: submission, inspection, and SSE streaming.
package reader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vantagehq/vantage/iox"
	"github.com/vantagehq/vantage/types"
)

// DefaultBaseURL points at a locally served gateway.
const DefaultBaseURL = "http://localhost:8080"

// Client talks to the vantage gateway API.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client for the gateway at baseURL.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No client timeout: SSE streams are long-lived. Non-streaming
		// calls bound themselves with per-request contexts.
		client: &http.Client{},
	}
}

// Submit starts a new run for the topic.
func (c *Client) Submit(ctx context.Context, topic string, includeVoice bool) (*types.RunSnapshot, error) {
	body, err := json.Marshal(map[string]any{
		"topic":         topic,
		"include_voice": includeVoice,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal submission: %w", err)
	}

	var snap types.RunSnapshot
	if err := c.doJSON(ctx, http.MethodPost, "/api/runs", body, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// GetRun fetches the current snapshot of one run.
func (c *Client) GetRun(ctx context.Context, id string) (*types.RunSnapshot, error) {
	var snap types.RunSnapshot
	if err := c.doJSON(ctx, http.MethodGet, "/api/runs/"+id, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// ListRuns fetches all retained runs, newest first.
func (c *Client) ListRuns(ctx context.Context) ([]types.RunSnapshot, error) {
	var body struct {
		Runs []types.RunSnapshot `json:"runs"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/runs", nil, &body); err != nil {
		return nil, err
	}
	return body.Runs, nil
}

// Stats fetches gateway counters.
func (c *Client) Stats(ctx context.Context) (map[string]any, error) {
	var stats map[string]any
	if err := c.doJSON(ctx, http.MethodGet, "/api/stats", nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body []byte, out any) error {
	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer iox.DrainClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeAPIError surfaces the gateway's error message when present.
func decodeAPIError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("gateway: %s (status %d)", body.Error, resp.StatusCode)
	}
	return fmt.Errorf("gateway: unexpected status %d", resp.StatusCode)
}
