package answer

import (
	"regexp"
	"strings"
)

// operators the spacing pass separates. `^`, `(`, `)`, `<`, `>` are included
// on top of the arithmetic set so exponent and comparison input survives OCR
// token fusion.
const operatorChars = `+\-*/=^()<>`

var (
	spaceRuns   = regexp.MustCompile(`\s+`)
	digitLetter = regexp.MustCompile(`(\d)([a-zA-Z])`)
	letterDigit = regexp.MustCompile(`([a-zA-Z])(\d)`)
	beforeOp    = regexp.MustCompile(`([0-9a-zA-Z])([` + operatorChars + `])`)
	afterOp     = regexp.MustCompile(`([` + operatorChars + `])([0-9a-zA-Z])`)
	opOp        = regexp.MustCompile(`([` + operatorChars + `])([` + operatorChars + `])`)
	digitSPlus  = regexp.MustCompile(`(\d)[sS]`)
	multiSpace  = regexp.MustCompile(` {2,}`)
)

// NormalizeExpression rebuilds a canonical token stream from fused OCR/ASR
// output: all whitespace is collapsed, then single spaces are reinserted
// around operators and at digit/letter boundaries ("3x" -> "3 x",
// "2+2" -> "2 + 2"). Applying it to its own output is a no-op.
func NormalizeExpression(raw string) string {
	s := spaceRuns.ReplaceAllString(strings.TrimSpace(raw), "")
	if s == "" {
		return ""
	}
	s = digitLetter.ReplaceAllString(s, "$1 $2")
	s = letterDigit.ReplaceAllString(s, "$1 $2")
	s = beforeOp.ReplaceAllString(s, "$1 $2")
	s = afterOp.ReplaceAllString(s, "$1 $2")
	// A second operator pass catches runs like ")(" the first pass split
	// only once, plus operator pairs such as "+-".
	s = opOp.ReplaceAllString(s, "$1 $2")
	s = opOp.ReplaceAllString(s, "$1 $2")
	return multiSpace.ReplaceAllString(strings.TrimSpace(s), " ")
}

// CorrectOCR maps visually similar OCR misreads onto canonical math
// characters. The table is lossy and order-dependent: a later rule may
// re-corrupt a character an earlier rule fixed (e.g. an `l` turned into `1`
// then glued to an `s` becomes `1+`). That is a known limitation of the
// heuristic, kept as-is for parity with the recognizer it was tuned against.
// Run exactly once, on the OCR path only; it is NOT idempotent.
func CorrectOCR(raw string) string {
	s := raw
	for _, r := range []string{"i", "I", "l"} {
		s = strings.ReplaceAll(s, r, "1")
	}
	for _, r := range []string{"O", "o", "Q"} {
		s = strings.ReplaceAll(s, r, "0")
	}
	for _, r := range []string{"J", "S", "Z"} {
		s = strings.ReplaceAll(s, r, "2")
	}
	// A digit glued to s/S is almost always a misread plus sign.
	s = digitSPlus.ReplaceAllString(s, "$1+")
	s = strings.ReplaceAll(s, "T", "+")
	s = strings.ReplaceAll(s, "t", "+")
	// Uppercase X is reserved for the algebraic variable.
	s = strings.ReplaceAll(s, "X", "x")
	return s
}

var mathChars = regexp.MustCompile(`[+\-*/=^<>x]`)

// LooksLikeMath reports whether OCR output is plausible math input: it must
// contain at least one operator or the variable character and a minimum of
// three non-space characters. Used as the cheap pre-filter that decides
// between the text path and the vision model.
func LooksLikeMath(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(spaceRuns.ReplaceAllString(trimmed, "")) < 3 {
		return false
	}
	return mathChars.MatchString(trimmed)
}
