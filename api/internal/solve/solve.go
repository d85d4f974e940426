// Package solve routes a request to the right upstream collaborators and
// assembles the final Answer list. Text requests run the retrieval-then-model
// state machine; image requests try OCR as a cheap pre-filter before falling
// back to the vision model; audio requests are transcribed when enabled.
package solve

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"neuron-be/api/internal/answer"
	"neuron-be/api/internal/imaging"
	"neuron-be/api/internal/llm"
	"neuron-be/api/internal/ocr"
	"neuron-be/api/internal/rag"
	"neuron-be/api/internal/speech"
	"neuron-be/api/internal/store"
	"neuron-be/api/internal/translate"
	"neuron-be/api/internal/util"
)

var (
	// ErrNoInput means no modality was supplied; handlers map it to 400.
	ErrNoInput = errors.New("no text, image or audio provided")
	// ErrAudioDisabled is the terminal state for audio input while
	// transcription is switched off; handlers map it to 500.
	ErrAudioDisabled = errors.New("audio input is temporarily disabled")
	// ErrBadImage means the image payload was not decodable base64.
	ErrBadImage = errors.New("bad image payload")
	// ErrNoRetriever is returned by RAGQuery when no retrieval chain is
	// configured.
	ErrNoRetriever = errors.New("retrieval is not configured")
	// ErrNotConfident is returned by RAGQuery when retrieval produced no
	// grounded answer.
	ErrNotConfident = errors.New("retrieval produced no confident result")
)

// NoTextRecognized is returned to the client when neither OCR nor a vision
// model could make anything of the image.
const NoTextRecognized = "No text recognized in the image. Please draw a math equation or type it in the text box."

// HistoryWriter is the slice of the persistence store the assembler needs.
type HistoryWriter interface {
	Save(ctx context.Context, rec store.HistoryRecord) error
}

// Request is one normalized inbound calculation call. Exactly one modality is
// consumed even if several are set: audio (when enabled) over image over text.
type Request struct {
	Text     string
	Image    string // base64, data: URLs accepted
	Audio    string // base64
	Vars     map[string]any
	Language string
	Username string
	ID       string // request id, carried into history metadata
}

// Solver holds the process-wide collaborator handles. All of them are
// constructed once at startup; unavailable ones arrive as null objects, so no
// method here ever probes availability per request.
type Solver struct {
	Model       llm.Model
	Vision      llm.VisionModel
	OCR         ocr.Reader
	Retriever   rag.Retriever // nil when retrieval is not configured
	Transcriber speech.Transcriber
	Synthesizer speech.Synthesizer
	Translator  translate.Translator
	History     HistoryWriter // nil disables history

	FallbackPhrase string // retrieval low-confidence marker, case-insensitive
	PivotLanguage  string // working language of the models, "en"
	AudioEnabled   bool
}

func (s *Solver) fallbackPhrase() string {
	if s.FallbackPhrase == "" {
		return rag.DefaultFallbackPhrase
	}
	return s.FallbackPhrase
}

func (s *Solver) pivot() string {
	if s.PivotLanguage == "" {
		return "en"
	}
	return s.PivotLanguage
}

// Solve dispatches one request end to end and returns the assembled Answer
// list. Only modality/config errors surface as errors; every upstream fault
// degrades to an error Answer.
func (s *Solver) Solve(ctx context.Context, req Request) ([]answer.Answer, error) {
	switch {
	case strings.TrimSpace(req.Audio) != "":
		return s.solveAudio(ctx, req)
	case strings.TrimSpace(req.Image) != "":
		return s.solveImage(ctx, req)
	case strings.TrimSpace(req.Text) != "":
		answers := s.solveText(ctx, req.Text, req)
		return s.assemble(ctx, answers, req, "text", req.Text), nil
	default:
		return nil, ErrNoInput
	}
}

// solveText runs the RAG_ATTEMPT -> LLM_FALLBACK -> DONE state machine.
func (s *Solver) solveText(ctx context.Context, text string, req Request) []answer.Answer {
	if s.Retriever != nil {
		if answers, ok := s.ragAttempt(ctx, text, req.Language); ok {
			return answers
		}
	}
	return s.llmFallback(ctx, text, req.Vars)
}

// ragAttempt consults the retrieval chain. ok=false means "go to the model":
// either the chain failed or it emitted the fallback phrase.
func (s *Solver) ragAttempt(ctx context.Context, query, lang string) ([]answer.Answer, bool) {
	q := query
	if lang != "" && !strings.EqualFold(lang, s.pivot()) && s.Translator != nil {
		translated, err := s.Translator.Translate(ctx, query, s.pivot())
		if err != nil {
			log.Printf("rag: pivot translation failed: %v", err)
		} else {
			q = translated
		}
	}
	res, err := s.Retriever.Invoke(ctx, q)
	if err != nil {
		log.Printf("rag: retrieval failed: %v", err)
		return nil, false
	}
	if res.Answer == "" || strings.Contains(strings.ToLower(res.Answer), strings.ToLower(s.fallbackPhrase())) {
		return nil, false
	}
	return []answer.Answer{{Expr: query, Result: res.Answer, Sources: res.Sources}}, true
}

// llmFallback asks the general model with the strict JSON prompt. There is no
// further fallback tier: an invocation failure becomes an error Answer, and a
// suspicious first answer earns at most one corrective re-invocation.
func (s *Solver) llmFallback(ctx context.Context, text string, vars map[string]any) []answer.Answer {
	expr := text
	if answer.LooksLikeMath(text) {
		expr = answer.NormalizeExpression(text)
	}

	raw, err := s.Model.Invoke(ctx, mathPrompt(expr, formatVars(vars)))
	if err != nil {
		return answer.ErrorAnswer(expr, "model invocation failed: "+err.Error())
	}
	answers := answer.Decode(raw, expr)

	if s.needsCorrection(answers, expr) {
		if corrected, ok := s.correct(ctx, expr); ok {
			answers = corrected
		}
	}
	return answers
}

// needsCorrection detects the two misfire shapes worth a single retry: the
// model declared a plain arithmetic expression non-mathematical, or it
// reported an internal failure for input that clearly contains digits.
func (s *Solver) needsCorrection(answers []answer.Answer, expr string) bool {
	if len(answers) == 0 {
		return false
	}
	res := strings.ToLower(answers[0].Result)
	if looksLikeArithmetic(expr) {
		for _, marker := range []string{"not a math", "not a mathematical", "no mathematical", "cannot solve"} {
			if strings.Contains(res, marker) {
				return true
			}
		}
	}
	if strings.Contains(res, answer.ParseFailure) && strings.ContainsAny(expr, "0123456789") {
		return true
	}
	return false
}

func (s *Solver) correct(ctx context.Context, expr string) ([]answer.Answer, bool) {
	raw, err := s.Model.Invoke(ctx, correctionPrompt(expr))
	if err != nil {
		return nil, false
	}
	corrected := answer.Decode(raw, expr)
	if len(corrected) == 0 || strings.Contains(corrected[0].Result, answer.ParseFailure) {
		return nil, false
	}
	return corrected, true
}

// looksLikeArithmetic is satisfied by digit/operator-only expressions like
// "2 + 2" or "3 * x".
func looksLikeArithmetic(s string) bool {
	hasDigit := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r == ' ' || r == '.' || r == 'x':
		case strings.ContainsRune("+-*/=^()<>", r):
		default:
			return false
		}
	}
	return hasDigit
}

// solveImage routes an image: OCR first, and only when the recognized text
// passes the math heuristic does it ride the text path; otherwise the vision
// model gets the image itself.
func (s *Solver) solveImage(ctx context.Context, req Request) ([]answer.Answer, error) {
	img, hintMIME, err := util.DecodeBase64MaybeDataURL(req.Image)
	if err != nil || len(img) == 0 {
		return nil, ErrBadImage
	}
	mime := util.PickMIME("", hintMIME, img)

	text, err := s.OCR.Read(ctx, imaging.PrepareForOCR(img))
	if err != nil {
		log.Printf("ocr: read failed: %v", err)
		text = ""
	}

	if answer.LooksLikeMath(text) {
		// Confusion repair runs exactly once, here: the text path must
		// never see it twice.
		repaired := answer.CorrectOCR(text)
		answers := s.solveText(ctx, repaired, req)
		return s.assemble(ctx, answers, req, "image", repaired), nil
	}

	if _, null := s.Vision.(llm.Unavailable); null && strings.TrimSpace(text) == "" {
		answers := answer.ErrorAnswer("", NoTextRecognized)
		return s.assemble(ctx, answers, req, "image", ""), nil
	}

	raw, err := s.Vision.InvokeImage(ctx, visionPrompt(formatVars(req.Vars)), img, mime)
	var answers []answer.Answer
	if err != nil {
		answers = answer.ErrorAnswer("", "vision model invocation failed: "+err.Error())
	} else {
		answers = answer.Decode(raw, strings.TrimSpace(text))
	}
	return s.assemble(ctx, answers, req, "image", text), nil
}

func (s *Solver) solveAudio(ctx context.Context, req Request) ([]answer.Answer, error) {
	if !s.AudioEnabled {
		return nil, ErrAudioDisabled
	}
	audio, _, err := util.DecodeBase64MaybeDataURL(req.Audio)
	if err != nil || len(audio) == 0 {
		return nil, fmt.Errorf("bad audio payload")
	}
	transcript, err := s.Transcriber.Transcribe(ctx, audio, req.Language)
	if err != nil || strings.TrimSpace(transcript) == "" {
		answers := answer.ErrorAnswer("", "could not transcribe audio")
		return s.assemble(ctx, answers, req, "audio", ""), nil
	}
	answers := s.solveText(ctx, transcript, req)
	return s.assemble(ctx, answers, req, "audio", transcript), nil
}

// RAGQuery serves the direct retrieval endpoint. Unlike the calculate path it
// does not fall back to the general model: a low-confidence retrieval is an
// error the handler surfaces as 500.
func (s *Solver) RAGQuery(ctx context.Context, query string, req Request) ([]answer.Answer, error) {
	if s.Retriever == nil {
		return nil, ErrNoRetriever
	}
	answers, ok := s.ragAttempt(ctx, query, req.Language)
	if !ok {
		return nil, ErrNotConfident
	}
	return s.assemble(ctx, answers, req, "rag", query), nil
}
