// Package adapter defines the downstream integration boundary.
//
// Adapters publish run completion notifications to downstream systems.
// The orchestrator invokes them fire-and-forget after a run reaches a
// terminal state; adapter failures are logged, never surfaced to
// subscribers, and never delay the run's own stream.
package adapter

import (
	"context"

	"github.com/vantagehq/vantage/types"
)

// RunCompletedEvent is the payload published when a run finishes.
type RunCompletedEvent struct {
	ContractVersion string `json:"contract_version"`
	EventType       string `json:"event_type"` // always "run_completed"
	RunID           string `json:"run_id"`
	Topic           string `json:"topic"`
	Outcome         string `json:"outcome"` // succeeded or failed
	Error           string `json:"error,omitempty"`
	Timestamp       string `json:"timestamp"` // ISO 8601
	EventCount      int64  `json:"event_count"`
	DurationMs      int64  `json:"duration_ms"`
	// Report is present only for succeeded runs.
	Report *types.Report `json:"report,omitempty"`
}

// Adapter publishes run completion events to a downstream system.
// Implementations must be safe for concurrent use across runs.
type Adapter interface {
	// Publish sends a run completion event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *RunCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}
