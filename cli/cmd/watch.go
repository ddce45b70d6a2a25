package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/vantagehq/vantage/cli/reader"
	"github.com/vantagehq/vantage/cli/render"
	"github.com/vantagehq/vantage/cli/tui"
	"github.com/vantagehq/vantage/types"
)

// WatchCommand returns the watch command: an interactive live view of
// one run's log stream on a remote gateway.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Follow a run's log stream interactively",
		ArgsUsage: "<run-id>",
		Flags: []cli.Flag{
			BaseURLFlag,
			&cli.Int64Flag{
				Name:  "from",
				Usage: "Replay the log starting at this sequence",
			},
		},
		Action: watchAction,
	}
}

func watchAction(c *cli.Context) error {
	runID := c.Args().First()
	if runID == "" {
		return cli.Exit("run id is required: vantage watch <run-id>", 1)
	}

	client := reader.New(c.String("base-url"))
	snap, err := client.GetRun(c.Context, runID)
	if err != nil {
		return err
	}

	status, report, err := tui.Watch(c.Context, client, runID, snap.Topic, c.Int64("from"))
	if err != nil {
		return err
	}
	if status == types.StatusFailed {
		return cli.Exit("", 1)
	}
	if report != nil {
		render.Report(c.App.Writer, report)
	}
	return nil
}
