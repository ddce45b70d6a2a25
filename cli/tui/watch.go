package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vantagehq/vantage/cli/reader"
	"github.com/vantagehq/vantage/types"
)

// Messages pumped into the model from the stream goroutine.
type (
	// LogMsg carries one appended log line.
	LogMsg types.LogEvent

	// DoneMsg carries the assembled Report of a succeeded run.
	DoneMsg types.Report

	// FailedMsg carries the terminal error of a failed run.
	FailedMsg types.ErrorEvent

	// StreamErrMsg reports a broken subscription.
	StreamErrMsg struct{ Err error }
)

// WatchModel follows one run's log stream until its terminal event.
type WatchModel struct {
	runID    string
	topic    string
	spinner  spinner.Model
	lines    []types.LogEvent
	status   types.RunStatus
	report   *types.Report
	errMsg   string
	done     bool
	quitting bool
	width    int
}

// NewWatchModel creates a watch model for the run.
func NewWatchModel(runID, topic string) WatchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = RunningStyle
	return WatchModel{
		runID:   runID,
		topic:   topic,
		spinner: sp,
		status:  types.StatusRunning,
	}
}

// Init implements tea.Model.
func (m WatchModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case LogMsg:
		m.lines = append(m.lines, types.LogEvent(msg))
		return m, nil

	case DoneMsg:
		m.done = true
		m.status = types.StatusSucceeded
		report := types.Report(msg)
		m.report = &report
		return m, tea.Quit

	case FailedMsg:
		m.done = true
		m.status = types.StatusFailed
		m.errMsg = msg.Message
		return m, tea.Quit

	case StreamErrMsg:
		m.done = true
		m.status = types.StatusFailed
		m.errMsg = fmt.Sprintf("stream broken: %v", msg.Err)
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Run %s", m.runID)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n\n", LabelStyle.Render("Topic:"), m.topic))

	for _, line := range m.lines {
		style := LogStyle
		if line.IsError {
			style = ErrorStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("[%s] %s", line.Ts.Format("15:04:05"), line.Text)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(StatusStyle(m.status).Render(string(m.status)))
		if m.errMsg != "" {
			b.WriteString("\n")
			b.WriteString(ErrorStyle.Render(m.errMsg))
		}
	} else {
		b.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), RunningStyle.Render("running")))
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return BoxStyle.Render(b.String()) + "\n" + help
}

// Status returns the run status the model last observed.
func (m WatchModel) Status() types.RunStatus {
	return m.status
}

// Report returns the Report delivered by the terminal done event, or
// nil if the run failed or the stream broke first.
func (m WatchModel) Report() *types.Report {
	return m.report
}

// keyMap defines key bindings.
type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Watch opens a stream for the run and drives the watch TUI until the
// run reaches a terminal event or the user quits. On success the
// returned Report is the one carried by the done event.
func Watch(ctx context.Context, client *reader.Client, runID, topic string, from int64) (types.RunStatus, *types.Report, error) {
	stream, err := client.Stream(ctx, runID, from)
	if err != nil {
		return "", nil, err
	}
	defer stream.Close()

	program := tea.NewProgram(NewWatchModel(runID, topic))
	go pumpEvents(program, stream)

	final, err := program.Run()
	if err != nil {
		return "", nil, fmt.Errorf("watch tui: %w", err)
	}
	model, ok := final.(WatchModel)
	if !ok {
		return "", nil, errors.New("watch tui returned unexpected model")
	}
	return model.Status(), model.Report(), nil
}

// pumpEvents forwards stream events into the program as messages.
func pumpEvents(program *tea.Program, stream *reader.Stream) {
	for {
		ev, err := stream.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				program.Send(StreamErrMsg{Err: err})
			}
			return
		}
		program.Send(translate(ev))
	}
}

func translate(ev reader.Event) tea.Msg {
	switch ev.Type {
	case types.StreamEventLog:
		var logEv types.LogEvent
		if err := json.Unmarshal(ev.Data, &logEv); err != nil {
			return StreamErrMsg{Err: fmt.Errorf("malformed log event: %w", err)}
		}
		return LogMsg(logEv)
	case types.StreamEventDone:
		var report types.Report
		if err := json.Unmarshal(ev.Data, &report); err != nil {
			return StreamErrMsg{Err: fmt.Errorf("malformed done event: %w", err)}
		}
		return DoneMsg(report)
	case types.StreamEventError:
		var errEv types.ErrorEvent
		if err := json.Unmarshal(ev.Data, &errEv); err != nil {
			return StreamErrMsg{Err: fmt.Errorf("malformed error event: %w", err)}
		}
		return FailedMsg(errEv)
	default:
		return StreamErrMsg{Err: fmt.Errorf("unknown event type %q", ev.Type)}
	}
}
