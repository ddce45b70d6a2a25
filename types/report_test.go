package types

import (
	"encoding/json"
	"strings"
	"testing"
)

// voice_script must be absent from the wire when the voice stage did not
// produce a script; an explicit empty field would break the presence
// invariant clients rely on.
func TestReport_VoiceScriptOmittedWhenEmpty(t *testing.T) {
	report := Report{
		Topic:    "AI hardware market",
		Articles: []Article{{Headline: "h", Source: "s", Summary: "sum"}},
	}

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "voice_script") {
		t.Errorf("empty voice_script should be omitted, got %s", data)
	}

	report.VoiceScript = "Good evening."
	data, err = json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"voice_script":"Good evening."`) {
		t.Errorf("voice_script should be present, got %s", data)
	}
}
