package runtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vantagehq/vantage/types"
)

func TestRun_AppendAssignsSequences(t *testing.T) {
	run := newRun("run-001", "AI hardware market", true)

	for i := range 5 {
		ev, err := run.Append("line", false)
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if ev.Sequence != int64(i) {
			t.Errorf("sequence = %d, want %d", ev.Sequence, i)
		}
	}

	events, closed := run.EventsSince(0)
	if closed {
		t.Error("log should not be closed")
	}
	if len(events) != 5 {
		t.Fatalf("got %d events, want 5", len(events))
	}
	for i, ev := range events {
		if ev.Sequence != int64(i) {
			t.Errorf("replay sequence[%d] = %d", i, ev.Sequence)
		}
	}
}

func TestRun_EventsSinceReplaysFrom(t *testing.T) {
	run := newRun("run-001", "topic", false)
	for range 6 {
		_, _ = run.Append("line", false)
	}

	events, _ := run.EventsSince(3)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Sequence != 3 {
		t.Errorf("first replayed sequence = %d, want 3", events[0].Sequence)
	}

	// Beyond the end: nothing, not an error.
	events, _ = run.EventsSince(100)
	if len(events) != 0 {
		t.Errorf("got %d events past the end, want 0", len(events))
	}
}

func TestRun_AppendAfterCloseRejected(t *testing.T) {
	run := newRun("run-001", "topic", false)
	_, _ = run.Append("line", false)
	run.fail("news", "provider down")

	if _, err := run.Append("late", false); !errors.Is(err, types.ErrLogClosed) {
		t.Errorf("append after close = %v, want ErrLogClosed", err)
	}
	if run.Status() != types.StatusFailed {
		t.Errorf("status = %s, want failed", run.Status())
	}
}

func TestRun_TerminalTransitionIsFinal(t *testing.T) {
	run := newRun("run-001", "topic", false)
	run.succeed(&types.Report{Topic: "topic"})
	run.fail("news", "too late")

	if run.Status() != types.StatusSucceeded {
		t.Errorf("status regressed to %s", run.Status())
	}
	if run.Err() != nil {
		t.Error("error recorded after success")
	}
}

func TestRun_WaitWakesOnAppend(t *testing.T) {
	run := newRun("run-001", "topic", false)

	done := make(chan []types.LogEvent, 1)
	go func() {
		batch, _, err := run.Wait(context.Background(), 0)
		if err != nil {
			t.Errorf("wait: %v", err)
		}
		done <- batch
	}()

	time.Sleep(10 * time.Millisecond)
	_, _ = run.Append("first", false)

	select {
	case batch := <-done:
		if len(batch) != 1 || batch[0].Text != "first" {
			t.Errorf("batch = %+v", batch)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not wake on append")
	}
}

func TestRun_WaitReturnsOnClose(t *testing.T) {
	run := newRun("run-001", "topic", false)

	done := make(chan bool, 1)
	go func() {
		batch, closed, _ := run.Wait(context.Background(), 0)
		done <- closed && len(batch) == 0
	}()

	time.Sleep(10 * time.Millisecond)
	run.succeed(&types.Report{Topic: "topic"})

	select {
	case drained := <-done:
		if !drained {
			t.Error("Wait should report closed with empty batch at end of log")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not wake on close")
	}
}

func TestRun_WaitHonorsContext(t *testing.T) {
	run := newRun("run-001", "topic", false)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, _, err := run.Wait(ctx, 0)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("wait err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not honor cancellation")
	}
}

// Multiple subscribers tailing the same run must each see the full
// sequence in order with no gaps, regardless of pacing.
func TestRun_ConcurrentSubscribersSeeSameOrder(t *testing.T) {
	run := newRun("run-001", "topic", false)
	const subscribers = 4
	const lines = 50

	var wg sync.WaitGroup
	results := make([][]int64, subscribers)
	for s := range subscribers {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			var seqs []int64
			from := int64(0)
			for {
				batch, closed, err := run.Wait(context.Background(), from)
				if err != nil {
					t.Errorf("subscriber %d: %v", s, err)
					return
				}
				for _, ev := range batch {
					seqs = append(seqs, ev.Sequence)
					from = ev.Sequence + 1
				}
				if closed && len(batch) == 0 {
					results[s] = seqs
					return
				}
				if s%2 == 0 {
					time.Sleep(time.Millisecond) // slow subscriber
				}
			}
		}(s)
	}

	for range lines {
		_, _ = run.Append("line", false)
	}
	run.succeed(&types.Report{Topic: "topic"})
	wg.Wait()

	for s, seqs := range results {
		if len(seqs) != lines {
			t.Fatalf("subscriber %d saw %d events, want %d", s, len(seqs), lines)
		}
		for i, seq := range seqs {
			if seq != int64(i) {
				t.Fatalf("subscriber %d: seqs[%d] = %d (gap or reorder)", s, i, seq)
			}
		}
	}
}

func TestRun_PinBlocksEviction(t *testing.T) {
	run := newRun("run-001", "topic", false)
	run.fail("news", "down")

	run.Retain()
	if run.evictableAt(time.Now().Add(time.Hour)) {
		t.Error("pinned terminal run must not be evictable")
	}
	run.Release()
	if !run.evictableAt(time.Now().Add(time.Hour)) {
		t.Error("released terminal run should be evictable")
	}
}
