// Package gateway exposes the run registry over HTTP: submission,
// inspection, listing, stats, and live SSE streaming of run logs.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/vantagehq/vantage/log"
	"github.com/vantagehq/vantage/metrics"
	"github.com/vantagehq/vantage/runtime"
	"github.com/vantagehq/vantage/types"
)

// DefaultHeartbeat is the idle interval between SSE keepalive comments.
const DefaultHeartbeat = 15 * time.Second

// DefaultSweepInterval is how often the background retention sweep runs.
const DefaultSweepInterval = time.Minute

// Config configures the gateway.
type Config struct {
	// Heartbeat is the SSE keepalive interval (default 15s).
	Heartbeat time.Duration
	// SweepInterval is the retention sweep cadence (default 1m).
	SweepInterval time.Duration
	// RunContext is the lifecycle context handed to started runs.
	// Runs outlive their submitting request; this context, not the
	// request's, cancels them on shutdown. Defaults to Background.
	RunContext context.Context
}

// Gateway is the HTTP surface over a Registry.
type Gateway struct {
	registry  *runtime.Registry
	logger    *log.Logger
	collector *metrics.Collector
	cfg       Config
	echo      *echo.Echo
	startedAt time.Time
}

// New wires the routes and returns a Gateway.
func New(registry *runtime.Registry, logger *log.Logger, collector *metrics.Collector, cfg Config) *Gateway {
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = DefaultHeartbeat
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.RunContext == nil {
		cfg.RunContext = context.Background()
	}
	if logger == nil {
		logger = log.NewLogger()
	}

	g := &Gateway{
		registry:  registry,
		logger:    logger,
		collector: collector,
		cfg:       cfg,
		startedAt: time.Now(),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.POST("/api/runs", g.submitRun)
	e.GET("/api/runs", g.listRuns)
	e.GET("/api/runs/:id", g.getRun)
	e.GET("/api/runs/:id/stream", g.streamRun)
	e.GET("/api/stats", g.stats)

	g.echo = e
	return g
}

// Handler returns the HTTP handler for mounting or testing.
func (g *Gateway) Handler() http.Handler {
	return g.echo
}

// Start serves on addr until Shutdown.
func (g *Gateway) Start(addr string) error {
	return g.echo.Start(addr)
}

// Shutdown drains the server. In-flight SSE subscribers are closed by
// their request contexts.
func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.echo.Shutdown(ctx)
}

// RunSweeper applies the retention policy on a ticker until ctx ends.
func (g *Gateway) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(g.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.registry.Sweep()
		}
	}
}

type submitRequest struct {
	Topic        string `json:"topic"`
	IncludeVoice bool   `json:"include_voice"`
}

func (g *Gateway) submitRun(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("malformed request body"))
	}

	run, err := g.registry.Submit(g.cfg.RunContext, req.Topic, req.IncludeVoice)
	if err != nil {
		return g.respondError(c, err)
	}

	g.logger.Info("run submitted", map[string]any{"run_id": run.ID, "topic": run.Topic, "voice": run.IncludeVoice})
	return c.JSON(http.StatusCreated, run.Snapshot())
}

func (g *Gateway) getRun(c echo.Context) error {
	run, err := g.registry.Get(c.Param("id"))
	if err != nil {
		return g.respondError(c, err)
	}
	return c.JSON(http.StatusOK, run.Snapshot())
}

func (g *Gateway) listRuns(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"runs": g.registry.List(),
	})
}

func (g *Gateway) stats(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"version":        types.Version,
		"uptime_seconds": int64(time.Since(g.startedAt).Seconds()),
		"runs_retained":  g.registry.Len(),
		"counters":       g.collector.Snapshot(),
	})
}

// streamRun serves the run's log as SSE. Replay starts at the `from`
// query parameter, or after the Last-Event-ID header on reconnect, or
// at the beginning. The stream ends with exactly one terminal event.
func (g *Gateway) streamRun(c echo.Context) error {
	from, err := resumePoint(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("from must be a non-negative integer"))
	}

	// Subscribe pins the run, so a sweep racing the attachment cannot
	// evict it out from under the subscriber.
	run, err := g.registry.Subscribe(c.Param("id"))
	if err != nil {
		return g.respondError(c, err)
	}
	defer run.Release()

	return g.serveStream(c, run, from)
}

// resumePoint determines the first sequence to deliver.
func resumePoint(c echo.Context) (int64, error) {
	if raw := c.QueryParam("from"); raw != "" {
		from, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || from < 0 {
			return 0, errors.New("invalid from")
		}
		return from, nil
	}
	if raw := c.Request().Header.Get("Last-Event-ID"); raw != "" {
		last, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || last < 0 {
			return 0, errors.New("invalid Last-Event-ID")
		}
		return last + 1, nil
	}
	return 0, nil
}

func (g *Gateway) respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, types.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, types.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorBody(err.Error()))
	default:
		g.logger.Error("request failed", map[string]any{"error": err.Error()})
		return c.JSON(http.StatusInternalServerError, errorBody("internal error"))
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
