package solve

import (
	"context"
	"encoding/base64"
	"log"
	"strings"
	"time"

	"neuron-be/api/internal/answer"
	"neuron-be/api/internal/store"
)

// assemble finishes a solved request: defaulting, post-hoc translation into
// the target language, speech synthesis, and the single history append. Every
// step here is best-effort; nothing in assemble can fail the request.
func (s *Solver) assemble(ctx context.Context, answers []answer.Answer, req Request, kind, input string) []answer.Answer {
	answer.ApplyDefaults(answers)

	if req.Language != "" && !strings.EqualFold(req.Language, s.pivot()) && s.Translator != nil {
		for i := range answers {
			translated, err := s.Translator.Translate(ctx, answers[i].Result, req.Language)
			if err != nil {
				log.Printf("assemble: translation failed: %v", err)
				continue
			}
			answers[i].Result = translated
		}
	}

	if s.Synthesizer != nil {
		for i := range answers {
			audio, err := s.Synthesizer.Synthesize(ctx, answers[i].Result, req.Language)
			if err != nil {
				log.Printf("assemble: tts failed: %v", err)
				continue
			}
			if len(audio) > 0 {
				answers[i].TTSAudio = base64.StdEncoding.EncodeToString(audio)
			}
		}
	}

	s.writeHistory(ctx, answers, req, kind, input)
	return answers
}

// writeHistory appends exactly one record per completed request. Persistence
// failures are logged and swallowed: history is fire-and-forget.
func (s *Solver) writeHistory(ctx context.Context, answers []answer.Answer, req Request, kind, input string) {
	if s.History == nil || req.Username == "" || len(answers) == 0 {
		return
	}
	meta := map[string]any{
		"request_id": req.ID,
		"language":   req.Language,
	}
	if len(answers[0].Sources) > 0 {
		meta["sources"] = answers[0].Sources
	}
	rec := store.HistoryRecord{
		Username:  req.Username,
		Type:      kind,
		Input:     input,
		Result:    answers[0].Result,
		Timestamp: time.Now().UTC(),
		Metadata:  meta,
	}
	if err := s.History.Save(ctx, rec); err != nil {
		log.Printf("history: save failed for %s: %v", req.Username, err)
	}
}
