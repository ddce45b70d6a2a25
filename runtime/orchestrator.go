package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vantagehq/vantage/adapter"
	"github.com/vantagehq/vantage/log"
	"github.com/vantagehq/vantage/metrics"
	"github.com/vantagehq/vantage/pipeline"
	"github.com/vantagehq/vantage/types"
)

// DefaultStageTimeout bounds a single stage invocation.
const DefaultStageTimeout = 90 * time.Second

// adapterPublishTimeout bounds fire-and-forget completion publishing.
const adapterPublishTimeout = 30 * time.Second

// AssembleFunc builds the terminal report from accumulated stage
// outputs once all mandatory stages succeeded.
type AssembleFunc func(topic string, outs pipeline.Outputs) (*types.Report, error)

// OrchestratorConfig configures the pipeline state machine.
type OrchestratorConfig struct {
	// Pipeline is the fixed stage sequence, shared across all runs.
	Pipeline *pipeline.Definition
	// Assemble builds the report on success.
	Assemble AssembleFunc
	// StageTimeout bounds each stage invocation (default 90s).
	StageTimeout time.Duration
	// Adapters receive run-completed events. May be empty.
	Adapters []adapter.Adapter
	// Logger is the process logger; per-run children are derived from it.
	Logger *log.Logger
	// Collector records run/stage counters. Nil-safe.
	Collector *metrics.Collector
}

// Orchestrator drives runs through the pipeline definition.
// It holds only shared read-only state; all mutable state lives in the
// Run being driven, so any number of runs execute concurrently without
// interaction.
type Orchestrator struct {
	pipeline     *pipeline.Definition
	assemble     AssembleFunc
	stageTimeout time.Duration
	adapters     []adapter.Adapter
	logger       *log.Logger
	collector    *metrics.Collector
}

// NewOrchestrator validates the config and returns an Orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	if cfg.Pipeline == nil {
		return nil, fmt.Errorf("orchestrator requires a pipeline definition")
	}
	if cfg.Assemble == nil {
		return nil, fmt.Errorf("orchestrator requires an assemble function")
	}
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = DefaultStageTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewLogger()
	}
	return &Orchestrator{
		pipeline:     cfg.Pipeline,
		assemble:     cfg.Assemble,
		stageTimeout: cfg.StageTimeout,
		adapters:     cfg.Adapters,
		logger:       logger,
		collector:    cfg.Collector,
	}, nil
}

// Execute drives one run to a terminal state.
//
// Execution flow:
//  1. Transition to running, announce the pipeline start.
//  2. For each stage: announce, select declared inputs, invoke under
//     the stage timeout, record output or classify the failure.
//  3. Assemble the report, transition to succeeded.
//  4. Publish run-completed events to adapters (fire and forget).
//
// Mandatory stage failure terminates the run as failed; optional stage
// failure degrades the report and execution continues. The run's log is
// closed exactly once, by the terminal transition.
func (o *Orchestrator) Execute(ctx context.Context, run *Run) {
	logger := o.logger.ForRun(run.ID, run.Topic)
	started := time.Now()

	run.markRunning()
	o.collector.IncRunStarted()
	o.append(run, fmt.Sprintf("Pipeline started for topic %q", run.Topic), false)
	logger.Info("run started", map[string]any{"stages": o.pipeline.Len(), "voice": run.IncludeVoice})

	outs := pipeline.Outputs{}
	for _, stage := range o.pipeline.Stages() {
		if stage.Optional && !run.IncludeVoice {
			continue
		}

		announce := stage.Announce
		if announce == "" {
			announce = fmt.Sprintf("Stage %s started", stage.Name)
		}
		o.append(run, announce, false)

		out, err := o.invoke(ctx, run, stage, outs)
		if err != nil {
			timedOut := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, types.ErrStageTimeout)
			if timedOut {
				o.collector.IncStageTimeout()
				err = fmt.Errorf("%w after %s: %v", types.ErrStageTimeout, o.stageTimeout, err)
			}

			if stage.Optional {
				// Best-effort stage: absorb the failure, degrade the report.
				o.collector.IncVoiceDegraded()
				o.append(run, fmt.Sprintf("Optional stage %s unavailable: %v", stage.Name, err), false)
				logger.Warn("optional stage degraded", map[string]any{"stage": stage.Name, "error": err.Error()})
				continue
			}

			o.collector.IncStageFailure()
			stageErr := types.NewStageError(stage.Name, err)
			o.append(run, fmt.Sprintf("Stage %s failed: %v", stage.Name, err), true)
			run.fail(stage.Name, stageErr.Error())
			o.collector.IncRunFailed()
			logger.Error("run failed", map[string]any{"stage": stage.Name, "error": err.Error()})
			o.publish(run, started)
			return
		}

		outs[stage.Name] = out
		if stage.Summarize != nil {
			o.append(run, stage.Summarize(out), false)
		}
	}

	report, err := o.assemble(run.Topic, outs)
	if err != nil {
		o.append(run, fmt.Sprintf("Report assembly failed: %v", err), true)
		run.fail("assemble", err.Error())
		o.collector.IncRunFailed()
		logger.Error("run failed", map[string]any{"stage": "assemble", "error": err.Error()})
		o.publish(run, started)
		return
	}

	o.append(run, "Pipeline complete", false)
	run.succeed(report)
	o.collector.IncRunSucceeded()
	logger.Info("run succeeded", map[string]any{"duration": time.Since(started).String()})
	o.publish(run, started)
}

// invoke runs one stage under the stage timeout. The emitter hands the
// stage a way to append progress lines; appends after the run closed
// are dropped.
func (o *Orchestrator) invoke(ctx context.Context, run *Run, stage pipeline.Stage, outs pipeline.Outputs) (any, error) {
	stageCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	emit := func(text string) {
		_, _ = run.Append(text, false)
	}

	out, err := stage.Run(stageCtx, run.Topic, emit, pipeline.SelectInputs(stage, outs))
	if err == nil && stageCtx.Err() != nil {
		// The stage returned a value but blew its budget; treat as timeout.
		err = stageCtx.Err()
	}
	return out, err
}

// append adds a log line and counts it. Appends racing a terminal
// transition return ErrLogClosed and are dropped.
func (o *Orchestrator) append(run *Run, text string, isError bool) {
	if _, err := run.Append(text, isError); err == nil {
		o.collector.IncEventsAppended(1)
	}
}

// publish sends the run-completed event to all adapters, detached from
// the run's context so server shutdown does not drop notifications
// mid-flight. Failures are logged and otherwise ignored.
func (o *Orchestrator) publish(run *Run, started time.Time) {
	if len(o.adapters) == 0 {
		return
	}

	snap := run.Snapshot()
	event := &adapter.RunCompletedEvent{
		ContractVersion: types.Version,
		EventType:       "run_completed",
		RunID:           snap.ID,
		Topic:           snap.Topic,
		Outcome:         string(snap.Status),
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		EventCount:      snap.EventCount,
		DurationMs:      time.Since(started).Milliseconds(),
	}
	if snap.Error != nil {
		event.Error = snap.Error.Message
	}
	if report, ok := run.Result(); ok {
		event.Report = report
	}

	logger := o.logger.ForRun(run.ID, run.Topic)
	for _, a := range o.adapters {
		go func(a adapter.Adapter) {
			ctx, cancel := context.WithTimeout(context.Background(), adapterPublishTimeout)
			defer cancel()
			if err := a.Publish(ctx, event); err != nil {
				logger.Warn("adapter publish failed", map[string]any{"error": err.Error()})
			}
		}(a)
	}
}
