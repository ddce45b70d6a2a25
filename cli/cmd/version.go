package cmd

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/vantagehq/vantage/cli/render"
	"github.com/vantagehq/vantage/types"
)

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// VersionCommand returns the version command.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		return render.JSON(os.Stdout, VersionResponse{
			Version: types.Version,
			Commit:  commit,
		})
	}
}
