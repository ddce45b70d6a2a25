// Package reka implements the Reka chat-completion client used for all
// reasoning and summarization calls.
package reka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vantagehq/vantage/iox"
	"github.com/vantagehq/vantage/provider"
)

// DefaultEndpoint is the Reka chat API endpoint.
const DefaultEndpoint = "https://api.reka.ai/v1/chat"

// DefaultModel is the model used when none is configured.
const DefaultModel = "reka-core-20240501"

// DefaultTimeout is the per-completion request timeout.
const DefaultTimeout = 60 * time.Second

// Config configures the Reka client.
type Config struct {
	// APIKey authenticates chat requests (required).
	APIKey string
	// Endpoint overrides the API endpoint, for tests.
	Endpoint string
	// Model selects the completion model (default reka-core-20240501).
	Model string
	// Timeout is the per-request timeout (default 60s).
	Timeout time.Duration
}

// Client is a Reka chat API client.
type Client struct {
	cfg    Config
	client *http.Client
}

// New creates a Reka client. Returns an error if the API key is empty.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("reka client requires an API key")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Responses []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"responses"`
}

// Complete sends a single-turn completion and returns the model's
// answer. The system instruction is folded into the user message, the
// shape the Reka chat API expects.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf("System Instruction: %s\n\nUser Question: %s", system, user)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("reka: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("reka: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reka: request failed: %w", err)
	}
	defer iox.DrainClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &provider.StatusError{Provider: "reka", Code: resp.StatusCode}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("reka: decode response: %w", err)
	}
	if len(parsed.Responses) == 0 {
		return "", errors.New("reka: empty response")
	}
	return strings.TrimSpace(parsed.Responses[0].Message.Content), nil
}

// Close releases client resources.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
