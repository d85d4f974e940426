package solve

import (
	"fmt"
	"sort"
	"strings"
)

const jsonContract = `Return STRICT JSON: an array of objects with the fields
"expr" (string, the recognized expression or input summary),
"result" (string, the final value or explanation) and
"assign" (boolean, true only when the input binds a variable, e.g. "x = 5").
Any text outside the JSON array is an error.`

// mathPrompt is the general-model prompt, carried over from the Neuron
// assistant with the JSON contract appended.
func mathPrompt(text, varsStr string) string {
	var b strings.Builder
	b.WriteString("You are an intelligent educational AI assistant called Neuron.\n")
	b.WriteString("Always keep answers short and concise.\n")
	b.WriteString("You analyze equations, expressions and questions in mathematics, physics, chemistry, biology, and civic education.\n")
	b.WriteString("If the input is a math problem, solve it and give the final answer clearly.")
	if varsStr != "" {
		fmt.Fprintf(&b, " Known variables: %s.", varsStr)
	}
	b.WriteString("\nIf the input assigns a value to a variable, set \"assign\" to true.\n")
	b.WriteString("If the input is not a math problem, answer it directly and simply.\n\n")
	b.WriteString(jsonContract)
	fmt.Fprintf(&b, "\n\nInput: %s", text)
	return b.String()
}

// correctionPrompt is the narrower one-shot re-prompt used when the first
// answer misjudged a plain arithmetic expression.
func correctionPrompt(text string) string {
	return fmt.Sprintf(
		"The following input is a plain arithmetic expression. Just solve it.\n\n%s\n\nExpression: %s",
		jsonContract, text)
}

// visionPrompt drives the vision model when OCR could not lift usable math
// off the image.
func visionPrompt(varsStr string) string {
	var b strings.Builder
	b.WriteString("You are an intelligent educational AI assistant called Neuron.\n")
	b.WriteString("Analyze the attached image: equations, diagrams, figures or scenes.\n")
	b.WriteString("If it contains a math problem, solve it step by step and give the final answer.")
	if varsStr != "" {
		fmt.Fprintf(&b, " Known variables: %s.", varsStr)
	}
	b.WriteString("\nOtherwise describe what the image shows, briefly.\n\n")
	b.WriteString(jsonContract)
	return b.String()
}

// formatVars renders dict_of_vars as "a=1, b=2" with deterministic order.
func formatVars(vars map[string]any) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, vars[k]))
	}
	return strings.Join(parts, ", ")
}
