package reader

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vantagehq/vantage/types"
)

func TestSubmit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/runs" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req["topic"] != "AI chips" || req["include_voice"] != true {
			t.Errorf("request body = %v", req)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(types.RunSnapshot{ID: "run-001", Topic: "AI chips", Status: types.StatusPending})
	}))
	defer server.Close()

	snap, err := New(server.URL).Submit(context.Background(), "AI chips", true)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if snap.ID != "run-001" || snap.Status != types.StatusPending {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestSubmit_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "invalid input: topic is required"}`))
	}))
	defer server.Close()

	_, err := New(server.URL).Submit(context.Background(), "", false)
	if err == nil || !strings.Contains(err.Error(), "topic is required") {
		t.Errorf("err = %v, want gateway message surfaced", err)
	}
}

func TestListRuns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"runs": [{"run_id": "a"}, {"run_id": "b"}]}`))
	}))
	defer server.Close()

	runs, err := New(server.URL).ListRuns(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "a" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("from"); got != "2" {
			t.Errorf("from = %s", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, ": hb\n\n")
		_, _ = io.WriteString(w, "event: log\nid: 2\ndata: {\"sequence\": 2, \"text\": \"working\"}\n\n")
		_, _ = io.WriteString(w, "event: done\nid: 3\ndata: {\"topic\": \"AI chips\", \"articles\": [{\"headline\": \"Chips rally\"}]}\n\n")
	}))
	defer server.Close()

	stream, err := New(server.URL).Stream(context.Background(), "run-001", 2)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer stream.Close()

	first, err := stream.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if first.Type != types.StreamEventLog || first.ID != 2 {
		t.Errorf("first = %+v", first)
	}
	var logEv types.LogEvent
	if err := json.Unmarshal(first.Data, &logEv); err != nil || logEv.Text != "working" {
		t.Errorf("log payload = %s (%v)", first.Data, err)
	}

	second, err := stream.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if second.Type != types.StreamEventDone || !second.Type.IsTerminal() {
		t.Errorf("second = %+v", second)
	}
	var report types.Report
	if err := json.Unmarshal(second.Data, &report); err != nil || report.Topic != "AI chips" {
		t.Errorf("done payload = %s (%v)", second.Data, err)
	}

	if _, err := stream.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("after terminal: err = %v, want EOF", err)
	}
}

func TestStream_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "run not found: nope"}`))
	}))
	defer server.Close()

	_, err := New(server.URL).Stream(context.Background(), "nope", 0)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v", err)
	}
}
