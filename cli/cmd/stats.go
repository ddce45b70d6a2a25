package cmd

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/vantagehq/vantage/cli/reader"
	"github.com/vantagehq/vantage/cli/render"
)

// StatsCommand returns the stats command: gateway counters and uptime.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show gateway counters",
		Flags:  []cli.Flag{BaseURLFlag},
		Action: statsAction,
	}
}

func statsAction(c *cli.Context) error {
	stats, err := reader.New(c.String("base-url")).Stats(c.Context)
	if err != nil {
		return err
	}
	return render.JSON(os.Stdout, stats)
}
