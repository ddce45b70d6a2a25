package adapter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRetry_FirstAttemptSucceeds(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, nil, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if calls != 1 {
		t.Errorf("op ran %d times, want 1", calls)
	}
}

func TestRetry_RecoversAfterFailure(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, nil, func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("op ran %d times, want 2", calls)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, nil, func() error {
		calls++
		return errors.New("always down")
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 2 {
		t.Errorf("op ran %d times, want 2", calls)
	}
	if !strings.Contains(err.Error(), "after 2 attempts") {
		t.Errorf("err = %v", err)
	}
}

func TestRetry_PermanentErrorStops(t *testing.T) {
	calls := 0
	sentinel := errors.New("bad request")
	err := Retry(context.Background(), 5, func(err error) bool { return errors.Is(err, sentinel) }, func() error {
		calls++
		return sentinel
	})
	if err == nil || !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want wrapped sentinel", err)
	}
	if calls != 1 {
		t.Errorf("op ran %d times after permanent failure, want 1", calls)
	}
}

func TestRetry_ContextCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := Retry(ctx, 10, nil, func() error {
		return errors.New("down")
	})
	if err == nil {
		t.Fatal("expected error on canceled context")
	}
	if time.Since(start) > 2*time.Second {
		t.Error("retry kept backing off after cancellation")
	}
}
