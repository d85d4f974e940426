// Package ocr exposes the text-recognizer collaborator. Recognition itself
// runs in a sidecar service; this package only carries the narrow contract
// the router needs.
package ocr

import "context"

type Reader interface {
	Read(ctx context.Context, image []byte) (string, error)
}

// Null is the startup fallback when no recognizer is configured. It returns
// no text, which pushes image requests straight to the vision model.
type Null struct{}

func (Null) Read(ctx context.Context, image []byte) (string, error) { return "", nil }
