// Package render formats CLI output: the market intelligence report,
// run listings, and streamed log lines.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vantagehq/vantage/iox"
	"github.com/vantagehq/vantage/types"
)

// Color palette.
var (
	primaryColor = lipgloss.Color("#7C3AED") // Purple
	successColor = lipgloss.Color("#10B981") // Green
	errorColor   = lipgloss.Color("#EF4444") // Red
	mutedColor   = lipgloss.Color("#6B7280") // Gray
	accentColor  = lipgloss.Color("#3B82F6") // Blue
)

var (
	titleBoxStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Border(lipgloss.DoubleBorder()).
			Padding(0, 2).
			Align(lipgloss.Center)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	subheadStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor)
)

// Report writes the full market intelligence report.
func Report(w io.Writer, report *types.Report) {
	header := fmt.Sprintf("MARKET INTELLIGENCE REPORT\nTopic: %s\n%s",
		report.Topic, time.Now().Format("2006-01-02 15:04"))
	fmt.Fprintln(w, titleBoxStyle.Render(header))
	fmt.Fprintln(w)

	section(w, "LATEST NEWS")
	if len(report.Articles) == 0 {
		fmt.Fprintln(w, subheadStyle.Render("  (no articles retrieved)"))
	}
	for _, a := range report.Articles {
		fmt.Fprintf(w, "  * %s\n", a.Headline)
		fmt.Fprintf(w, "    Source : %s\n", a.Source)
		fmt.Fprintf(w, "    Summary: %s\n\n", a.Summary)
	}

	section(w, "MARKET TRENDS")
	bullets(w, "*", report.Trends.Trends)
	fmt.Fprintln(w, subheadStyle.Render("  Sentiment Shifts:"))
	bullets(w, ">", report.Trends.SentimentShifts)
	fmt.Fprintln(w)

	section(w, "STRATEGIC OPPORTUNITIES")
	bullets(w, "+", report.Strategy.Opportunities)
	fmt.Fprintln(w, subheadStyle.Render("  Recommendations:"))
	bullets(w, ">", report.Strategy.Recommendations)
	fmt.Fprintln(w)

	section(w, "RISKS & SIGNALS")
	fmt.Fprintln(w, subheadStyle.Render("  Market Risks:"))
	bullets(w, "x", report.Risks.Risks)
	fmt.Fprintln(w, subheadStyle.Render("  Weak Signals:"))
	bullets(w, "~", report.Risks.WeakSignals)
	fmt.Fprintln(w, subheadStyle.Render("  Uncertainties:"))
	bullets(w, "?", report.Risks.Uncertainties)
	fmt.Fprintln(w)

	if report.VoiceScript != "" {
		section(w, "VOICE BRIEFING")
		fmt.Fprintf(w, "  %s\n\n", report.VoiceScript)
	}

	fmt.Fprintln(w, subheadStyle.Render(strings.Repeat("=", 60)))
	fmt.Fprintln(w, subheadStyle.Render("  End of Report"))
	fmt.Fprintln(w, subheadStyle.Render(strings.Repeat("=", 60)))
}

func section(w io.Writer, title string) {
	fmt.Fprintln(w, sectionStyle.Render(title))
	fmt.Fprintln(w, subheadStyle.Render(strings.Repeat("-", 60)))
}

func bullets(w io.Writer, marker string, items []string) {
	for _, item := range items {
		fmt.Fprintf(w, "  %s %s\n", marker, item)
	}
}

// LogLine writes one streamed run log line, error lines in red.
func LogLine(w io.Writer, ev types.LogEvent) {
	line := fmt.Sprintf("[%s] %s", ev.Ts.Format("15:04:05"), ev.Text)
	if ev.IsError {
		line = errorStyle.Render(line)
	}
	fmt.Fprintln(w, line)
}

// Status writes a colorized run status word.
func Status(status types.RunStatus) string {
	switch status {
	case types.StatusSucceeded:
		return successStyle.Render(string(status))
	case types.StatusFailed:
		return errorStyle.Render(string(status))
	default:
		return string(status)
	}
}

// Runs writes a run listing table.
func Runs(w io.Writer, runs []types.RunSnapshot) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "(no runs)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer iox.DiscardErr(tw.Flush)

	fmt.Fprintln(tw, "RUN ID\tTOPIC\tSTATUS\tCREATED\tEVENTS")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			run.ID, run.Topic, run.Status, run.CreatedAt.Format(time.RFC3339), run.EventCount)
	}
}

// JSON writes indented JSON, for piping.
func JSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
