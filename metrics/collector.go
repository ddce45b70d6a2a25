// Package metrics provides process-wide metrics collection.
//
// The Collector accumulates counters across all runs. It is a leaf
// package with no internal dependencies. All increment methods are
// nil-receiver safe so call sites never need to guard against an
// unconfigured collector.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Run lifecycle
	RunsStarted   int64 `json:"runs_started"`
	RunsSucceeded int64 `json:"runs_succeeded"`
	RunsFailed    int64 `json:"runs_failed"`
	RunsEvicted   int64 `json:"runs_evicted"`

	// Stages
	StageFailures  int64 `json:"stage_failures"`
	StageTimeouts  int64 `json:"stage_timeouts"`
	VoiceDegraded  int64 `json:"voice_degraded"`
	EventsAppended int64 `json:"events_appended"`

	// Streaming
	SubscribersAttached  int64 `json:"subscribers_attached"`
	SubscribersCompleted int64 `json:"subscribers_completed"`
}

// Collector accumulates counters for the lifetime of the process.
// Thread-safe via sync.Mutex.
type Collector struct {
	mu sync.Mutex

	runsStarted   int64
	runsSucceeded int64
	runsFailed    int64
	runsEvicted   int64

	stageFailures  int64
	stageTimeouts  int64
	voiceDegraded  int64
	eventsAppended int64

	subscribersAttached  int64
	subscribersCompleted int64
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// IncRunStarted records a run entering the running state.
func (c *Collector) IncRunStarted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.runsStarted++
	c.mu.Unlock()
}

// IncRunSucceeded records a run reaching the succeeded state.
func (c *Collector) IncRunSucceeded() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.runsSucceeded++
	c.mu.Unlock()
}

// IncRunFailed records a run reaching the failed state.
func (c *Collector) IncRunFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.runsFailed++
	c.mu.Unlock()
}

// IncRunEvicted records a terminal run removed by the retention sweep.
func (c *Collector) IncRunEvicted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.runsEvicted++
	c.mu.Unlock()
}

// IncStageFailure records a mandatory stage failure.
func (c *Collector) IncStageFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.stageFailures++
	c.mu.Unlock()
}

// IncStageTimeout records a stage exceeding its invocation budget.
func (c *Collector) IncStageTimeout() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.stageTimeouts++
	c.mu.Unlock()
}

// IncVoiceDegraded records an optional voice stage failure absorbed
// without failing the run.
func (c *Collector) IncVoiceDegraded() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.voiceDegraded++
	c.mu.Unlock()
}

// IncEventsAppended records log events appended to run logs.
func (c *Collector) IncEventsAppended(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.eventsAppended += n
	c.mu.Unlock()
}

// IncSubscriberAttached records a stream subscription.
func (c *Collector) IncSubscriberAttached() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.subscribersAttached++
	c.mu.Unlock()
}

// IncSubscriberCompleted records a subscriber that observed a terminal event.
func (c *Collector) IncSubscriberCompleted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.subscribersCompleted++
	c.mu.Unlock()
}

// Snapshot returns an immutable copy of all counters.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		RunsStarted:          c.runsStarted,
		RunsSucceeded:        c.runsSucceeded,
		RunsFailed:           c.runsFailed,
		RunsEvicted:          c.runsEvicted,
		StageFailures:        c.stageFailures,
		StageTimeouts:        c.stageTimeouts,
		VoiceDegraded:        c.voiceDegraded,
		EventsAppended:       c.eventsAppended,
		SubscribersAttached:  c.subscribersAttached,
		SubscribersCompleted: c.subscribersCompleted,
	}
}
