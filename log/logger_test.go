package log

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestForRun_AttachesRunContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger().WithOutput(&buf).ForRun("run-001", "AI hardware market")

	logger.Info("pipeline started", map[string]any{"stages": 5})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v (%s)", err, buf.String())
	}

	if entry["run_id"] != "run-001" {
		t.Errorf("run_id = %v, want run-001", entry["run_id"])
	}
	if entry["topic"] != "AI hardware market" {
		t.Errorf("topic = %v, want AI hardware market", entry["topic"])
	}
	if entry["message"] != "pipeline started" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
}

func TestSugar_Formatting(t *testing.T) {
	var buf bytes.Buffer
	sugar := NewLogger().WithOutput(&buf).Sugar()

	sugar.Infof("run %s finished in %dms", "run-002", 42)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["message"] != "run run-002 finished in 42ms" {
		t.Errorf("message = %v", entry["message"])
	}
}
