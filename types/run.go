package types

import "time"

// RunStatus represents the lifecycle state of a run.
type RunStatus string

// Run status constants. Transitions are monotonic:
// pending -> running -> succeeded | failed.
const (
	StatusPending   RunStatus = "pending"
	StatusRunning   RunStatus = "running"
	StatusSucceeded RunStatus = "succeeded"
	StatusFailed    RunStatus = "failed"
)

// Terminal returns true if the status has no outgoing transitions.
func (s RunStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// RunError is the recorded cause of a failed run.
type RunError struct {
	// Stage is the name of the pipeline stage that failed.
	Stage string `json:"stage"`
	// Message is the human-readable failure cause, recorded verbatim.
	Message string `json:"message"`
}

// RunSnapshot is a point-in-time view of a run, safe to serialize.
// The live run entity is owned by the runtime registry; snapshots are
// what the gateway and CLI surfaces expose.
type RunSnapshot struct {
	ID           string     `json:"run_id"`
	Topic        string     `json:"topic"`
	IncludeVoice bool       `json:"include_voice"`
	Status       RunStatus  `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	EventCount   int64      `json:"event_count"`
	Error        *RunError  `json:"error,omitempty"`
}
