// Package types defines the data model shared across the runtime,
// gateway, and CLI: runs, log events, reports, and error classification.
//
// This file defines sentinel errors and error wrappers. These enable
// callers to use errors.Is/errors.As for typed assertions rather than
// string matching.
package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for failure classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrInvalidInput indicates a malformed submission (empty topic).
	// Rejected at the boundary; never enters a run's log.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates an unknown or evicted run id.
	ErrNotFound = errors.New("run not found")

	// ErrStageFailed indicates a mandatory pipeline stage failed.
	ErrStageFailed = errors.New("stage failed")

	// ErrStageTimeout indicates a stage exceeded its invocation budget.
	// Treated identically to a stage failure.
	ErrStageTimeout = errors.New("stage timed out")

	// ErrLogClosed indicates an append was attempted after the run
	// reached a terminal state.
	ErrLogClosed = errors.New("run log closed")
)

// StageError wraps a stage failure with the failing stage's name.
// It preserves the original error in the chain for errors.As inspection.
type StageError struct {
	// Stage is the pipeline stage name.
	Stage string
	// Err is the underlying provider or timeout error.
	Err error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a classified stage failure.
func NewStageError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
