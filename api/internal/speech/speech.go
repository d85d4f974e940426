// Package speech carries the speech-to-text and text-to-speech collaborator
// contracts. Both are best-effort: synthesis failure yields an empty audio
// field and transcription failure becomes an error Answer upstream, never a
// server fault.
package speech

import "context"

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// NullTranscriber stands in when no STT service is configured.
type NullTranscriber struct{}

func (NullTranscriber) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	return "", nil
}

// NullSynthesizer stands in when no TTS service is configured; the assembler
// treats empty audio as "no speech attached".
type NullSynthesizer struct{}

func (NullSynthesizer) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	return nil, nil
}
