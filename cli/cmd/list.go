package cmd

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/vantagehq/vantage/cli/reader"
	"github.com/vantagehq/vantage/cli/render"
)

// ListCommand returns the list command: retained runs on a gateway.
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:   "list",
		Usage:  "List retained runs, newest first",
		Flags:  ClientFlags(),
		Action: listAction,
	}
}

func listAction(c *cli.Context) error {
	runs, err := reader.New(c.String("base-url")).ListRuns(c.Context)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return render.JSON(os.Stdout, map[string]any{"runs": runs})
	}
	render.Runs(os.Stdout, runs)
	return nil
}
