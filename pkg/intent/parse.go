package intent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON decodes a model's JSON reply into an OrderIntent. Markdown code
// fences around the payload are tolerated; models add them even when asked
// for bare JSON.
//
// Malformed JSON is an error. A syntactically valid reply with an unknown
// intent type is not: it degrades to UNKNOWN with zero confidence so the
// caller's fallback logic takes over. Item quantities default to 1.
func ParseJSON(raw string) (*OrderIntent, error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("intent: empty model reply")
	}

	var out OrderIntent
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("intent: decoding model reply: %w", err)
	}

	if !out.Type.Valid() {
		return &OrderIntent{Type: Unknown, Confidence: 0}, nil
	}

	if out.Confidence < 0 {
		out.Confidence = 0
	}
	if out.Confidence > 1 {
		out.Confidence = 1
	}
	for i := range out.Items {
		if out.Items[i].Quantity < 1 {
			out.Items[i].Quantity = 1
		}
	}
	return &out, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
