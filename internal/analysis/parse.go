// Package analysis turns transcripts and acoustic signals into a
// verification decision.
package analysis

import (
	"encoding/json"
	"strings"
)

// DecodeModelJSON parses a model response that is expected to be a JSON
// object, tolerating a fenced code block wrapper. Anything else is an
// error; callers fall back to their documented defaults.
func DecodeModelJSON(raw string, dst any) error {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// drop the opening fence line and the trailing fence
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		}
		if j := strings.LastIndex(s, "```"); j >= 0 {
			s = s[:j]
		}
		s = strings.TrimSpace(s)
	}

	return json.Unmarshal([]byte(s), dst)
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
