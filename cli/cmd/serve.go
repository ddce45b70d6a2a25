package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/vantagehq/vantage/gateway"
	"github.com/vantagehq/vantage/log"
	"github.com/vantagehq/vantage/metrics"
)

// defaultListen is the gateway bind address when neither the flag nor
// the config file sets one.
const defaultListen = ":8080"

// shutdownGrace bounds graceful drain on SIGINT/SIGTERM.
const shutdownGrace = 10 * time.Second

// ServeCommand returns the serve command: the long-running gateway.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the run gateway (HTTP API + SSE streaming)",
		Flags: []cli.Flag{
			ConfigFlag,
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Bind address (overrides config)",
			},
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger := log.NewLogger()
	collector := metrics.NewCollector()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry, adapters, err := buildRegistry(ctx, cfg, logger, collector)
	if err != nil {
		return err
	}
	defer closeAdapters(adapters)

	gw := gateway.New(registry, logger, collector, gateway.Config{
		Heartbeat:     cfg.Stream.Heartbeat.Duration,
		SweepInterval: cfg.Stream.SweepInterval.Duration,
		RunContext:    ctx,
	})

	listen := c.String("listen")
	if listen == "" {
		listen = cfg.Listen
	}
	if listen == "" {
		listen = defaultListen
	}

	logger.Info("gateway starting", map[string]any{"listen": listen, "adapters": len(adapters)})

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		if err := gw.Start(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	grp.Go(func() error {
		gw.RunSweeper(grpCtx)
		return nil
	})
	grp.Go(func() error {
		<-grpCtx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return gw.Shutdown(drainCtx)
	})

	err = grp.Wait()
	logger.Info("gateway stopped", nil)
	return err
}
