package types

import "time"

// StreamEventType discriminates events on a run's subscriber stream.
type StreamEventType string

// Stream event type constants. A subscriber receives zero or more log
// events followed by exactly one terminal event (done xor error).
const (
	StreamEventLog   StreamEventType = "log"
	StreamEventDone  StreamEventType = "done"
	StreamEventError StreamEventType = "error"
)

// IsTerminal returns true if this event type ends a subscriber stream.
func (t StreamEventType) IsTerminal() bool {
	return t == StreamEventDone || t == StreamEventError
}

// LogEvent is one line of a run's append-only log.
//
// Sequence numbers are per-run, start at 0, and increase by exactly one
// per append. Insertion order is the authoritative event order; events
// are never mutated or reordered once appended. A reconnecting
// subscriber requests replay-from-N using the sequence number.
type LogEvent struct {
	// Sequence is the monotone per-run sequence number.
	Sequence int64 `json:"sequence"`
	// Text is the log line.
	Text string `json:"text"`
	// IsError marks lines recording a stage failure.
	IsError bool `json:"is_error,omitempty"`
	// Ts is the append timestamp.
	Ts time.Time `json:"ts"`
}

// ErrorEvent is the payload of a terminal error stream event.
type ErrorEvent struct {
	Message string `json:"message"`
}
