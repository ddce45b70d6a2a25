package runtime

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vantagehq/vantage/log"
	"github.com/vantagehq/vantage/metrics"
	"github.com/vantagehq/vantage/types"
)

// Retention defaults. A terminal run is evicted once it falls outside
// the newest MaxRuns completed runs or exceeds TTL, whichever triggers
// first, unless a subscriber still has it pinned.
const (
	DefaultMaxRuns = 100
	DefaultTTL     = 30 * time.Minute
)

// RegistryConfig configures run retention.
type RegistryConfig struct {
	// MaxRuns is the maximum number of terminal runs retained (default 100).
	MaxRuns int
	// TTL is how long a terminal run stays addressable (default 30m).
	TTL time.Duration
}

// Registry is the process-wide table of in-flight and recently
// completed runs. It is the sole owner of the run set: only the sweep
// deletes a run, and never one a subscriber is still streaming from.
type Registry struct {
	orch      *Orchestrator
	cfg       RegistryConfig
	logger    *log.Logger
	collector *metrics.Collector

	mu   sync.Mutex // guards runs for add/lookup/evict only, never across a stage invocation
	runs map[string]*Run
}

// NewRegistry creates an empty registry driving runs with orch.
func NewRegistry(orch *Orchestrator, cfg RegistryConfig, logger *log.Logger, collector *metrics.Collector) *Registry {
	if cfg.MaxRuns <= 0 {
		cfg.MaxRuns = DefaultMaxRuns
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if logger == nil {
		logger = log.NewLogger()
	}
	return &Registry{
		orch:      orch,
		cfg:       cfg,
		logger:    logger,
		collector: collector,
		runs:      make(map[string]*Run),
	}
}

// Create validates the topic and allocates a pending run.
// Returns ErrInvalidInput for empty or whitespace-only topics; the run
// is rejected before it exists, so nothing reaches any log.
func (g *Registry) Create(topic string, includeVoice bool) (*Run, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", types.ErrInvalidInput)
	}

	run := newRun(uuid.New().String(), topic, includeVoice)

	g.mu.Lock()
	g.runs[run.ID] = run
	g.mu.Unlock()

	g.sweep(time.Now())
	return run, nil
}

// Get returns the run for id, or ErrNotFound if unknown or evicted.
func (g *Registry) Get(id string) (*Run, error) {
	g.mu.Lock()
	run, ok := g.runs[id]
	g.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, id)
	}
	return run, nil
}

// Subscribe returns the run for id pinned against eviction, so a
// retention sweep between lookup and attachment cannot drop it.
// Callers must Release the run once the subscriber drains the terminal
// event or disconnects.
func (g *Registry) Subscribe(id string) (*Run, error) {
	g.mu.Lock()
	run, ok := g.runs[id]
	if ok {
		run.Retain()
	}
	g.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, id)
	}
	return run, nil
}

// Start hands the run to the orchestrator for asynchronous execution.
// Idempotent: a second Start for the same run is a no-op.
func (g *Registry) Start(ctx context.Context, id string) error {
	run, err := g.Get(id)
	if err != nil {
		return err
	}
	if !run.tryStart() {
		return nil
	}
	go g.orch.Execute(ctx, run)
	return nil
}

// Submit is Create followed by Start.
func (g *Registry) Submit(ctx context.Context, topic string, includeVoice bool) (*Run, error) {
	run, err := g.Create(topic, includeVoice)
	if err != nil {
		return nil, err
	}
	if err := g.Start(ctx, run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

// List returns snapshots of all retained runs, newest first.
func (g *Registry) List() []types.RunSnapshot {
	g.mu.Lock()
	snaps := make([]types.RunSnapshot, 0, len(g.runs))
	for _, run := range g.runs {
		snaps = append(snaps, run.Snapshot())
	}
	g.mu.Unlock()

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
	})
	return snaps
}

// Len returns the number of retained runs.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.runs)
}

// Sweep applies the retention policy and returns how many runs were
// evicted. Called on every Create and periodically by the gateway.
func (g *Registry) Sweep() int {
	return g.sweep(time.Now())
}

func (g *Registry) sweep(now time.Time) int {
	cutoff := now.Add(-g.cfg.TTL)

	g.mu.Lock()

	// TTL pass: terminal, unpinned, ended before the cutoff.
	var evicted []string
	for id, run := range g.runs {
		if run.evictableAt(cutoff) {
			evicted = append(evicted, id)
			delete(g.runs, id)
		}
	}

	// Count pass: keep at most MaxRuns terminal runs, oldest-ended out first.
	type ended struct {
		id string
		at time.Time
	}
	var terminal []ended
	for id, run := range g.runs {
		if run.Status().Terminal() && !run.pinned() {
			terminal = append(terminal, ended{id: id, at: run.endedAtOr()})
		}
	}
	if excess := len(terminal) - g.cfg.MaxRuns; excess > 0 {
		sort.Slice(terminal, func(i, j int) bool { return terminal[i].at.Before(terminal[j].at) })
		for _, e := range terminal[:excess] {
			evicted = append(evicted, e.id)
			delete(g.runs, e.id)
		}
	}

	g.mu.Unlock()

	for range evicted {
		g.collector.IncRunEvicted()
	}
	if len(evicted) > 0 {
		g.logger.Debug("retention sweep evicted runs", map[string]any{"count": len(evicted)})
	}
	return len(evicted)
}
