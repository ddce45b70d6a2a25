package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vantagehq/vantage/cli/reader"
	"github.com/vantagehq/vantage/types"
)

func eventOf(typ types.StreamEventType, data string) reader.Event {
	return reader.Event{Type: typ, Data: []byte(data)}
}

func TestWatchModel_LogAccumulation(t *testing.T) {
	var m tea.Model = NewWatchModel("run-001", "AI chips")

	m, _ = m.Update(LogMsg{Sequence: 0, Text: "Stage news started", Ts: time.Now()})
	m, _ = m.Update(LogMsg{Sequence: 1, Text: "Summarized: Chips rally", Ts: time.Now()})

	view := m.View()
	if !strings.Contains(view, "run-001") || !strings.Contains(view, "AI chips") {
		t.Errorf("view missing header: %q", view)
	}
	if !strings.Contains(view, "Stage news started") || !strings.Contains(view, "Summarized: Chips rally") {
		t.Errorf("view missing log lines: %q", view)
	}
	if !strings.Contains(view, "running") {
		t.Errorf("view missing running indicator: %q", view)
	}
}

func TestWatchModel_Done(t *testing.T) {
	var m tea.Model = NewWatchModel("run-001", "AI chips")

	m, cmd := m.Update(DoneMsg{
		Topic:    "AI chips",
		Articles: []types.Article{{Headline: "Chips rally", Source: "https://example.com/a"}},
	})
	if cmd == nil {
		t.Fatal("done should quit")
	}

	wm := m.(WatchModel)
	if wm.Status() != types.StatusSucceeded {
		t.Errorf("status = %s", wm.Status())
	}
	report := wm.Report()
	if report == nil || len(report.Articles) != 1 {
		t.Fatalf("report = %#v", report)
	}
	if !strings.Contains(m.View(), "succeeded") {
		t.Errorf("view = %q", m.View())
	}
}

func TestWatchModel_Failed(t *testing.T) {
	var m tea.Model = NewWatchModel("run-002", "AI chips")

	m, cmd := m.Update(FailedMsg{Message: "stage trend: provider unreachable"})
	if cmd == nil {
		t.Fatal("failure should quit")
	}

	wm := m.(WatchModel)
	if wm.Status() != types.StatusFailed {
		t.Errorf("status = %s", wm.Status())
	}
	if !strings.Contains(m.View(), "provider unreachable") {
		t.Errorf("view = %q", m.View())
	}
}

func TestWatchModel_QuitKey(t *testing.T) {
	var m tea.Model = NewWatchModel("run-003", "AI chips")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if m.View() != "" {
		t.Errorf("quitting view = %q", m.View())
	}
}

func TestTranslate(t *testing.T) {
	if ev, ok := translate(eventOf(types.StreamEventLog, `{"sequence": 1, "text": "working"}`)).(LogMsg); !ok || ev.Text != "working" {
		t.Errorf("log translated to %#v", ev)
	}
	if ev, ok := translate(eventOf(types.StreamEventDone, `{"topic": "AI chips", "voice_script": "Good evening."}`)).(DoneMsg); !ok || ev.VoiceScript != "Good evening." {
		t.Errorf("done translated to %#v", ev)
	}
	if ev, ok := translate(eventOf(types.StreamEventError, `{"message": "boom"}`)).(FailedMsg); !ok || ev.Message != "boom" {
		t.Errorf("error translated to %#v", ev)
	}
}

func TestTranslate_Malformed(t *testing.T) {
	msg := translate(eventOf(types.StreamEventLog, `not json`))
	if _, ok := msg.(StreamErrMsg); !ok {
		t.Errorf("msg = %#v, want StreamErrMsg", msg)
	}

	msg = translate(eventOf("mystery", `{}`))
	if _, ok := msg.(StreamErrMsg); !ok {
		t.Errorf("msg = %#v, want StreamErrMsg", msg)
	}
}
