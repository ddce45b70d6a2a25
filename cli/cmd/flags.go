// Package cmd provides CLI commands for the vantage binary.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags.
var (
	// ConfigFlag points at the vantage.yaml configuration file.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to vantage.yaml (optional for gateway-client commands)",
	}

	// BaseURLFlag points client commands at a running gateway.
	BaseURLFlag = &cli.StringFlag{
		Name:  "base-url",
		Usage: "Gateway base URL",
		Value: "http://localhost:8080",
	}

	// JSONFlag switches output to machine-readable JSON.
	JSONFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Emit JSON instead of formatted output",
	}
)

// ClientFlags returns the shared flags for gateway-client commands.
func ClientFlags() []cli.Flag {
	return []cli.Flag{
		BaseURLFlag,
		JSONFlag,
	}
}
