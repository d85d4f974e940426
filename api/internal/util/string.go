package util

import "strings"

// StripCodeFences removes a surrounding markdown code fence, including
// language-tagged openers such as ```json.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = s[3:]
		// drop a language tag on the opener line
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			first := strings.TrimSpace(s[:nl])
			if first != "" && !strings.ContainsAny(first, "{}[]") {
				s = s[nl+1:]
			}
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
