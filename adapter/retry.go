package adapter

import (
	"context"
	"fmt"
	"time"
)

// retryBaseDelay is the first backoff interval; it doubles per attempt.
const retryBaseDelay = 500 * time.Millisecond

// Retry runs op up to attempts times with exponential backoff between
// attempts. permanent classifies errors that must not be retried; a nil
// permanent treats every failure as retriable. Backoff sleeps honor ctx
// cancellation.
func Retry(ctx context.Context, attempts int, permanent func(error) bool, op func() error) error {
	var lastErr error
	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context canceled: %w", err)
		}
		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * retryBaseDelay
			select {
			case <-ctx.Done():
				return fmt.Errorf("context canceled during backoff: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if permanent != nil && permanent(lastErr) {
			return fmt.Errorf("non-retriable: %w", lastErr)
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
