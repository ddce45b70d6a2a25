// Package runtime implements the orchestration core: the Run entity,
// the Registry owning all runs, and the Orchestrator driving one run
// through the pipeline definition.
package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/vantagehq/vantage/types"
)

// Run is one execution of the pipeline for a single topic.
//
// The Registry is the sole owner of the set of Runs; a Run owns its
// append-only log and (on success) its report. Subscribers read the log
// by sequence number and never mutate it. All per-run state is guarded
// by the Run's own mutex so a blocked stage invocation never holds any
// registry-wide lock.
type Run struct {
	// Immutable after creation.
	ID           string
	Topic        string
	IncludeVoice bool
	CreatedAt    time.Time

	mu        sync.Mutex
	status    types.RunStatus
	startedAt *time.Time
	endedAt   *time.Time
	events    []types.LogEvent
	closed    bool
	notify    chan struct{} // closed and remade on every append and on close
	result    *types.Report
	runErr    *types.RunError
	started   bool
	pins      int // live subscribers; a pinned terminal run is not evictable
}

func newRun(id, topic string, includeVoice bool) *Run {
	return &Run{
		ID:           id,
		Topic:        topic,
		IncludeVoice: includeVoice,
		CreatedAt:    time.Now(),
		status:       types.StatusPending,
		notify:       make(chan struct{}),
	}
}

// Append adds one line to the run's log and wakes all waiting
// subscribers. Returns ErrLogClosed after the run reached a terminal
// state; late emits from a timed-out stage are dropped by callers.
func (r *Run) Append(text string, isError bool) (types.LogEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return types.LogEvent{}, types.ErrLogClosed
	}
	ev := types.LogEvent{
		Sequence: int64(len(r.events)),
		Text:     text,
		IsError:  isError,
		Ts:       time.Now(),
	}
	r.events = append(r.events, ev)
	r.broadcastLocked()
	return ev, nil
}

// broadcastLocked wakes all waiters by closing the current notify
// channel and installing a fresh one. Callers hold r.mu.
func (r *Run) broadcastLocked() {
	close(r.notify)
	r.notify = make(chan struct{})
}

// EventsSince returns a copy of all log events with sequence >= from,
// plus whether the log is closed. The log is append-only, so the copy
// is consistent without holding the lock during delivery.
func (r *Run) EventsSince(from int64) ([]types.LogEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if from < 0 {
		from = 0
	}
	if from >= int64(len(r.events)) {
		return nil, r.closed
	}
	batch := make([]types.LogEvent, int64(len(r.events))-from)
	copy(batch, r.events[from:])
	return batch, r.closed
}

// Wait blocks until at least one event with sequence >= from exists or
// the log closes, then returns the available batch. A nil batch with
// closed=true means the subscriber has drained the log and should emit
// the terminal event. Honors ctx cancellation.
func (r *Run) Wait(ctx context.Context, from int64) ([]types.LogEvent, bool, error) {
	for {
		r.mu.Lock()
		ch := r.notify
		r.mu.Unlock()

		batch, closed := r.EventsSince(from)
		if len(batch) > 0 || closed {
			return batch, closed, nil
		}

		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-ch:
		}
	}
}

// markRunning transitions pending -> running.
func (r *Run) markRunning() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != types.StatusPending {
		return
	}
	now := time.Now()
	r.status = types.StatusRunning
	r.startedAt = &now
}

// succeed records the report, transitions to succeeded, and closes the
// log. Exactly one of succeed/fail is called per run.
func (r *Run) succeed(report *types.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status.Terminal() {
		return
	}
	now := time.Now()
	r.status = types.StatusSucceeded
	r.endedAt = &now
	r.result = report
	r.closed = true
	r.broadcastLocked()
}

// fail records the cause, transitions to failed, and closes the log.
func (r *Run) fail(stage, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status.Terminal() {
		return
	}
	now := time.Now()
	r.status = types.StatusFailed
	r.endedAt = &now
	r.runErr = &types.RunError{Stage: stage, Message: message}
	r.closed = true
	r.broadcastLocked()
}

// tryStart claims the run for execution. Returns false if the run was
// already handed to the orchestrator, making Start idempotent.
func (r *Run) tryStart() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return false
	}
	r.started = true
	return true
}

// Status returns the current lifecycle state.
func (r *Run) Status() types.RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Result returns the report if the run succeeded.
func (r *Run) Result() (*types.Report, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result, r.result != nil
}

// Err returns the recorded failure cause if the run failed.
func (r *Run) Err() *types.RunError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runErr
}

// Retain pins the run against eviction while a subscriber is attached.
// Callers must pair it with Release.
func (r *Run) Retain() {
	r.mu.Lock()
	r.pins++
	r.mu.Unlock()
}

// Release unpins the run after the subscriber observed the terminal
// event or disconnected.
func (r *Run) Release() {
	r.mu.Lock()
	if r.pins > 0 {
		r.pins--
	}
	r.mu.Unlock()
}

func (r *Run) pinned() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pins > 0
}

// evictableAt reports whether the run is terminal, unpinned, and ended
// before the cutoff. Used by the retention sweep.
func (r *Run) evictableAt(cutoff time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.status.Terminal() || r.pins > 0 || r.endedAt == nil {
		return false
	}
	return r.endedAt.Before(cutoff)
}

// Snapshot returns a serializable point-in-time view of the run.
func (r *Run) Snapshot() types.RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return types.RunSnapshot{
		ID:           r.ID,
		Topic:        r.Topic,
		IncludeVoice: r.IncludeVoice,
		Status:       r.status,
		CreatedAt:    r.CreatedAt,
		StartedAt:    r.startedAt,
		EndedAt:      r.endedAt,
		EventCount:   int64(len(r.events)),
		Error:        r.runErr,
	}
}

// endedAtOr returns the terminal timestamp, or zero time if still live.
func (r *Run) endedAtOr() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.endedAt == nil {
		return time.Time{}
	}
	return *r.endedAt
}
