// Package pipeline defines the fixed stage sequence a run executes.
//
// A Definition is built once at process configuration time, validated,
// and shared read-only across all runs. Stage functions are external
// collaborators: the orchestrator only knows that a stage consumes the
// named outputs of earlier stages and produces one output or fails.
package pipeline

import (
	"context"
	"fmt"
)

// Outputs holds the accumulated outputs of completed stages, keyed by
// stage name. Stage k only ever sees outputs of stages 1..k-1.
type Outputs map[string]any

// Emitter appends one progress line to the owning run's log.
// Stage functions may call it any number of times; calls after the run
// reaches a terminal state are dropped.
type Emitter func(text string)

// StageFunc executes one pipeline phase for the run's topic. It must
// return within the orchestrator's stage timeout or honor ctx
// cancellation.
type StageFunc func(ctx context.Context, topic string, emit Emitter, inputs Outputs) (any, error)

// Stage describes one phase of the pipeline.
type Stage struct {
	// Name keys the stage's output in Outputs. Unique within a Definition.
	Name string
	// Announce is the log line appended when the stage begins.
	Announce string
	// Inputs names the prior stage outputs this stage consumes.
	Inputs []string
	// Optional marks a best-effort stage: its failure degrades the
	// report instead of failing the run. Optional stages sit at the
	// tail of the definition.
	Optional bool
	// Run is the stage function.
	Run StageFunc
	// Summarize renders the one-line completion summary appended to the
	// run's log (counts, snippets). Nil means a generic line.
	Summarize func(out any) string
}

// Definition is a validated, ordered stage sequence.
type Definition struct {
	stages []Stage
}

// New validates the stage sequence and returns a Definition.
//
// Validity rules, enforced here rather than at run time:
//   - at least one stage, all named, names unique
//   - inputs reference strictly earlier stages (no forward or self references)
//   - optional stages only at the tail (a mandatory stage may not follow
//     an optional one, so skipping an optional stage never starves input)
func New(stages ...Stage) (*Definition, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("pipeline requires at least one stage")
	}

	seen := make(map[string]int, len(stages))
	optionalSeen := false
	for i, s := range stages {
		if s.Name == "" {
			return nil, fmt.Errorf("stage %d has no name", i)
		}
		if s.Run == nil {
			return nil, fmt.Errorf("stage %q has no stage function", s.Name)
		}
		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("duplicate stage name %q", s.Name)
		}
		for _, in := range s.Inputs {
			if in == s.Name {
				return nil, fmt.Errorf("stage %q references itself", s.Name)
			}
			if _, ok := seen[in]; !ok {
				return nil, fmt.Errorf("stage %q references %q, which is not an earlier stage", s.Name, in)
			}
		}
		if optionalSeen && !s.Optional {
			return nil, fmt.Errorf("mandatory stage %q follows an optional stage", s.Name)
		}
		optionalSeen = optionalSeen || s.Optional
		seen[s.Name] = i
	}

	// Copy so callers cannot mutate the validated sequence.
	owned := make([]Stage, len(stages))
	copy(owned, stages)
	return &Definition{stages: owned}, nil
}

// Stages returns the ordered stage sequence.
// The returned slice is shared; callers must not mutate it.
func (d *Definition) Stages() []Stage {
	return d.stages
}

// Len returns the number of stages.
func (d *Definition) Len() int {
	return len(d.stages)
}

// SelectInputs builds the input set for the given stage from the
// accumulated outputs, restricted to the stage's declared inputs.
func SelectInputs(s Stage, outs Outputs) Outputs {
	selected := make(Outputs, len(s.Inputs))
	for _, name := range s.Inputs {
		if v, ok := outs[name]; ok {
			selected[name] = v
		}
	}
	return selected
}
