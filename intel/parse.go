package intel

import (
	"encoding/json"
	"strings"
)

// unparseableNote fills list fields when the model ignored the JSON
// contract; the raw answer is preserved in the primary field so the
// pipeline keeps running.
const unparseableNote = "Unable to parse structured output."

// decodeStructured parses a model answer that should be bare JSON but
// may arrive wrapped in markdown code fences.
func decodeStructured(raw string, v any) error {
	return json.Unmarshal([]byte(stripFences(raw)), v)
}

// stripFences removes a leading ```json or ``` fence and a trailing
// ``` fence, if present.
func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = text[3:]
		text = strings.TrimPrefix(text, "json")
		text = strings.TrimSpace(text)
	}
	if strings.HasSuffix(text, "```") {
		text = strings.TrimSpace(text[:len(text)-3])
	}
	return text
}
