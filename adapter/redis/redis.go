// Package redis implements a Redis pub/sub integration adapter.
//
// Run completion events are published as JSON to a configured channel
// so downstream consumers can react without polling the gateway.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vantagehq/vantage/adapter"
)

// DefaultChannel is the pub/sub channel events land on.
const DefaultChannel = "vantage:run_completed"

// DefaultTimeout is the per-publish timeout.
const DefaultTimeout = 5 * time.Second

// DefaultRetries is the number of retry attempts after the first try.
const DefaultRetries = 3

// Config configures the Redis adapter.
type Config struct {
	// URL is the Redis connection URL (required).
	// Format: redis://[:password@]host:port[/db]
	URL string
	// Channel is the pub/sub channel name (default vantage:run_completed).
	Channel string
	// Timeout is the per-publish timeout (default 5s).
	Timeout time.Duration
	// Retries is the number of retry attempts on failure (default 3).
	Retries int
}

// Adapter publishes run completion events via Redis PUBLISH.
type Adapter struct {
	cfg    Config
	client *goredis.Client
}

// New creates a Redis adapter. Returns an error if the URL is empty or
// unparseable, or retries is negative.
func New(cfg Config) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis adapter requires a URL")
	}
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis adapter: invalid URL: %w", err)
	}
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}
	return &Adapter{
		cfg:    cfg,
		client: goredis.NewClient(opts),
	}, nil
}

// Publish sends the event as JSON to the configured channel, retrying
// connection failures with exponential backoff.
func (a *Adapter) Publish(ctx context.Context, event *adapter.RunCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: marshal event: %w", err)
	}

	err = adapter.Retry(ctx, 1+a.cfg.Retries, nil, func() error {
		publishCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
		return a.client.Publish(publishCtx, a.cfg.Channel, body).Err()
	})
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (a *Adapter) Close() error {
	return a.client.Close()
}

var _ adapter.Adapter = (*Adapter)(nil)
