// Package tui provides the Bubble Tea watch view for following a run's
// log stream live from a terminal.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vantagehq/vantage/types"
)

// Color palette.
var (
	primaryColor = lipgloss.Color("#7C3AED") // Purple
	successColor = lipgloss.Color("#10B981") // Green
	warningColor = lipgloss.Color("#F59E0B") // Amber
	errorColor   = lipgloss.Color("#EF4444") // Red
	mutedColor   = lipgloss.Color("#6B7280") // Gray
)

// Styles for TUI components.
var (
	// TitleStyle for the run header.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// LabelStyle for field labels.
	LabelStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	// LogStyle for streamed log lines.
	LogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	// SuccessStyle for succeeded runs.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	// RunningStyle for in-flight runs.
	RunningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	// ErrorStyle for failed runs and error log lines.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	// BoxStyle for the log container.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2)

	// HelpStyle for the footer help text.
	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)
)

// StatusStyle returns a style matching the run status.
func StatusStyle(status types.RunStatus) lipgloss.Style {
	switch status {
	case types.StatusSucceeded:
		return SuccessStyle
	case types.StatusFailed:
		return ErrorStyle
	case types.StatusRunning:
		return RunningStyle
	default:
		return LabelStyle
	}
}
