package answer

import (
	"encoding/json"
	"strings"

	"neuron-be/api/internal/util"
)

// Sanitize extracts a well-formed JSON array from free-form model output.
// It strips code fences, then scans from the first `{` or `[` counting depth
// until it closes. A bare object is wrapped in [ ] because downstream always
// expects a list. On any failure it returns "[]" and never errors; callers
// that need a diagnostic use Decode.
//
// The scan is a pre-parse recovery heuristic only: it does not understand
// string literals, so a brace inside a quoted value can truncate the span.
// The real decode happens afterwards and maps failures to an error Answer.
func Sanitize(raw string) string {
	s := util.StripCodeFences(raw)

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "[]"
	}

	open := s[start]
	var closer byte = '}'
	if open == '[' {
		closer = ']'
	}

	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case closer:
			depth--
		}
		if depth == 0 {
			span := s[start : i+1]
			if open == '{' {
				return "[" + span + "]"
			}
			return span
		}
	}
	// Depth never returned to zero: truncated output.
	return "[]"
}

// Decode runs Sanitize and decodes the result. An empty or undecodable array
// degrades to a single Answer whose result carries the parse-failure marker;
// expr preserves what the request asked so history stays useful.
func Decode(raw, expr string) []Answer {
	var answers []Answer
	if err := json.Unmarshal([]byte(Sanitize(raw)), &answers); err != nil || len(answers) == 0 {
		return ErrorAnswer(expr, ParseFailure)
	}
	ApplyDefaults(answers)
	return answers
}
