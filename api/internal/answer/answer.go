package answer

import "strings"

// Answer is one structured result returned to the client. Every Answer that
// leaves the server has expr, result and assign present; ApplyDefaults fills
// the holes a model left.
type Answer struct {
	Expr     string   `json:"expr"`
	Result   string   `json:"result"`
	Assign   bool     `json:"assign"`
	Sources  []string `json:"sources,omitempty"`
	TTSAudio string   `json:"tts_audio,omitempty"`
}

const (
	// ResultPlaceholder is substituted when the model omitted result entirely.
	ResultPlaceholder = "no result produced"

	// ParseFailure marks an Answer that stands in for an unparseable model
	// response. Clients look for this substring.
	ParseFailure = "could not parse model response"
)

// ApplyDefaults enforces the base-field invariant in place.
func ApplyDefaults(answers []Answer) {
	for i := range answers {
		if strings.TrimSpace(answers[i].Result) == "" {
			answers[i].Result = ResultPlaceholder
		}
	}
}

// ErrorAnswer builds the single degraded Answer used when the model produced
// no usable structure.
func ErrorAnswer(expr, result string) []Answer {
	return []Answer{{Expr: expr, Result: result}}
}
