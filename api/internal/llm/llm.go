// Package llm defines the chat/vision model collaborators the solver talks
// to. Implementations live in subpackages per provider; availability is
// decided once at startup and an unavailable provider is replaced by the
// null-object Unavailable, never probed per request.
package llm

import "context"

// Model is a text-in/text-out generative model.
type Model interface {
	Name() string
	Invoke(ctx context.Context, prompt string) (string, error)
}

// VisionModel accepts an image alongside the instruction prompt.
type VisionModel interface {
	Name() string
	InvokeImage(ctx context.Context, prompt string, image []byte, mime string) (string, error)
}

// UnavailableText is the fixed payload the null model emits. It is already a
// well-formed Answer array so the sanitizer/decoder pass it through and the
// client sees a proper degraded Answer instead of a 500.
const UnavailableText = `[{"expr": "", "result": "language model is unavailable", "assign": false}]`

// Unavailable satisfies Model and VisionModel when no provider could be
// constructed at startup.
type Unavailable struct{}

func (Unavailable) Name() string { return "unavailable" }

func (Unavailable) Invoke(ctx context.Context, prompt string) (string, error) {
	return UnavailableText, nil
}

func (Unavailable) InvokeImage(ctx context.Context, prompt string, image []byte, mime string) (string, error) {
	return UnavailableText, nil
}
