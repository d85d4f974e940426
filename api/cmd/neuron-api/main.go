package main

import (
	"context"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"neuron-be/api/internal/auth"
	"neuron-be/api/internal/config"
	"neuron-be/api/internal/handle"
	"neuron-be/api/internal/llm"
	"neuron-be/api/internal/llm/gemini"
	"neuron-be/api/internal/llm/ollama"
	"neuron-be/api/internal/ocr"
	ocrremote "neuron-be/api/internal/ocr/remote"
	"neuron-be/api/internal/rag"
	"neuron-be/api/internal/solve"
	"neuron-be/api/internal/speech"
	"neuron-be/api/internal/speech/piper"
	"neuron-be/api/internal/speech/whisper"
	"neuron-be/api/internal/store"
	"neuron-be/api/internal/translate"
)

func main() {
	cfg := config.Load()

	// --- Postgres (degrades to no persistence when unreachable) ---
	var (
		users       handle.UserStore
		historyRead handle.HistoryReader
		historyWr   solve.HistoryWriter
	)
	if cfg.DatabaseURL == "" {
		log.Print("DATABASE_URL not set: auth and history are disabled")
	} else if db, err := store.Open(cfg.DatabaseURL); err != nil {
		log.Printf("store: open failed, running without persistence: %v", err)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Printf("store: ping failed, running without persistence: %v", err)
		} else if err := store.EnsureSchema(ctx, db); err != nil {
			log.Printf("store: schema bootstrap failed, running without persistence: %v", err)
		} else {
			log.Print("db connected")
			users = store.NewUserRepo(db)
			repo := store.NewHistoryRepo(db)
			historyRead = repo
			historyWr = repo
		}
	}

	// --- model engine (availability decided once, here) ---
	var (
		model  llm.Model
		vision llm.VisionModel
	)
	switch cfg.LLMEngine {
	case "gemini":
		if cfg.GeminiAPIKey != "" {
			e := gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
			model, vision = e, e
		}
	default:
		if cfg.OllamaURL != "" {
			model = ollama.New(cfg.OllamaURL, cfg.OllamaModel)
			vision = ollama.New(cfg.OllamaURL, cfg.OllamaVisionModel)
		}
	}
	if model == nil {
		log.Printf("llm: engine %q not configured, using the unavailable model", cfg.LLMEngine)
		model = llm.Unavailable{}
	}
	if vision == nil {
		vision = llm.Unavailable{}
	}

	var reader ocr.Reader = ocr.Null{}
	if cfg.OCRURL != "" {
		reader = ocrremote.New(cfg.OCRURL, cfg.OCRLanguages)
	}

	var retriever rag.Retriever
	if cfg.RAGURL != "" {
		retriever = rag.New(cfg.RAGURL)
	}

	var transcriber speech.Transcriber = speech.NullTranscriber{}
	if cfg.WhisperURL != "" {
		transcriber = whisper.New(cfg.WhisperURL)
	}
	var synthesizer speech.Synthesizer = speech.NullSynthesizer{}
	if cfg.TTSURL != "" {
		synthesizer = piper.New(cfg.TTSURL)
	}
	var translator translate.Translator = translate.Null{}
	if cfg.TranslateURL != "" {
		translator = translate.New(cfg.TranslateURL, cfg.TranslateKey)
	}

	solver := &solve.Solver{
		Model:       model,
		Vision:      vision,
		OCR:         reader,
		Retriever:   retriever,
		Transcriber: transcriber,
		Synthesizer: synthesizer,
		Translator:  translator,
		History:     historyWr,

		FallbackPhrase: cfg.RAGFallbackPhrase,
		PivotLanguage:  cfg.PivotLanguage,
		AudioEnabled:   cfg.AudioEnabled,
	}

	tokens := auth.NewTokens(cfg.JWTSecret, 24*time.Hour)
	h := handle.New(solver, users, historyRead, tokens)

	mux := http.NewServeMux()
	h.Routes(mux)

	addr := ":" + cfg.Port
	log.Printf("neuron-api listening on %s (engine=%s, rag=%v, audio=%v)",
		addr, model.Name(), retriever != nil, cfg.AudioEnabled)
	log.Fatal(http.ListenAndServe(addr, handle.Recover(mux)))
}
