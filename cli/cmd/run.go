package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/vantagehq/vantage/cli/render"
	"github.com/vantagehq/vantage/log"
	"github.com/vantagehq/vantage/metrics"
	"github.com/vantagehq/vantage/types"
)

// RunCommand returns the run command: a one-shot in-process pipeline
// execution that streams the log to stdout and prints the report.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Execute one market intelligence run and print the report",
		ArgsUsage: "<topic>",
		Flags: []cli.Flag{
			ConfigFlag,
			JSONFlag,
			&cli.BoolFlag{
				Name:  "voice",
				Usage: "Include the broadcast voice script",
			},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	topic := c.Args().First()
	if topic == "" {
		return cli.Exit("topic is required: vantage run \"<topic>\"", 1)
	}

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

	run, err := registry.Submit(ctx, topic, c.Bool("voice"))
	if err != nil {
		return err
	}

	// Follow the log until the terminal transition closes it.
	var from int64
	for {
		batch, closed, err := run.Wait(ctx, from)
		if err != nil {
			return cli.Exit("interrupted", 1)
		}
		for _, ev := range batch {
			if !c.Bool("json") {
				render.LogLine(os.Stdout, ev)
			}
			from = ev.Sequence + 1
		}
		if closed && len(batch) == 0 {
			break
		}
	}

	if run.Status() == types.StatusFailed {
		if runErr := run.Err(); runErr != nil {
			fmt.Fprintf(os.Stderr, "run failed at stage %s: %s\n", runErr.Stage, runErr.Message)
		}
		return cli.Exit("", 1)
	}

	report, ok := run.Result()
	if !ok {
		return cli.Exit("run succeeded but produced no report", 1)
	}

	if c.Bool("json") {
		return render.JSON(os.Stdout, report)
	}
	fmt.Println()
	render.Report(os.Stdout, report)
	return nil
}
