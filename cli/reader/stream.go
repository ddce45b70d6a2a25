package reader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/vantagehq/vantage/types"
)

// Event is one parsed server-sent event from a run stream.
type Event struct {
	Type types.StreamEventType
	ID   int64
	Data []byte
}

// Stream is an open SSE subscription to one run's log.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

// Stream subscribes to the run's log starting at sequence from.
// The caller must Close the stream.
func (c *Client) Stream(ctx context.Context, id string, from int64) (*Stream, error) {
	url := fmt.Sprintf("%s/api/runs/%s/stream?from=%d", c.baseURL, id, from)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}

	return &Stream{
		body:    resp.Body,
		scanner: bufio.NewScanner(resp.Body),
	}, nil
}

// Next blocks for the next event. Returns io.EOF once the server ends
// the stream after its terminal event.
func (s *Stream) Next() (Event, error) {
	event := Event{ID: -1}
	sawField := false

	for s.scanner.Scan() {
		line := s.scanner.Text()
		switch {
		case line == "":
			if sawField {
				return event, nil
			}
		case strings.HasPrefix(line, ":"):
			// keepalive comment
		case strings.HasPrefix(line, "event: "):
			event.Type = types.StreamEventType(strings.TrimPrefix(line, "event: "))
			sawField = true
		case strings.HasPrefix(line, "id: "):
			id, err := strconv.ParseInt(strings.TrimPrefix(line, "id: "), 10, 64)
			if err != nil {
				return Event{}, fmt.Errorf("malformed id line %q", line)
			}
			event.ID = id
			sawField = true
		case strings.HasPrefix(line, "data: "):
			event.Data = []byte(strings.TrimPrefix(line, "data: "))
			sawField = true
		}
	}
	if err := s.scanner.Err(); err != nil {
		return Event{}, err
	}
	return Event{}, io.EOF
}

// Close tears down the subscription.
func (s *Stream) Close() error {
	return s.body.Close()
}
