package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	JWTSecret string

	// LLMEngine selects the chat/vision provider: "ollama" or "gemini".
	LLMEngine         string
	OllamaURL         string
	OllamaModel       string
	OllamaVisionModel string
	GeminiAPIKey      string
	GeminiModel       string

	OCRURL       string
	OCRLanguages []string

	RAGURL            string
	RAGFallbackPhrase string

	WhisperURL   string
	TTSURL       string
	TranslateURL string
	TranslateKey string

	AudioEnabled  bool
	PivotLanguage string
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvBool(k string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

// Load reads the environment (after a best-effort .env load). Collaborator
// URLs default to empty, which selects the null implementation at startup:
// a missing service degrades, it does not crash.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8900"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		LLMEngine:         strings.ToLower(getEnv("LLM_ENGINE", "ollama")),
		OllamaURL:         getEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:       getEnv("OLLAMA_MODEL", "gemma3"),
		OllamaVisionModel: getEnv("OLLAMA_VISION_MODEL", "llava"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		OCRURL: getEnv("OCR_URL", ""),

		RAGURL:            getEnv("RAG_URL", ""),
		RAGFallbackPhrase: getEnv("RAG_FALLBACK_PHRASE", "not available in the documents"),

		WhisperURL:   getEnv("WHISPER_URL", ""),
		TTSURL:       getEnv("TTS_URL", ""),
		TranslateURL: getEnv("TRANSLATE_URL", ""),
		TranslateKey: getEnv("TRANSLATE_API_KEY", ""),

		AudioEnabled:  getEnvBool("AUDIO_ENABLED", false),
		PivotLanguage: getEnv("PIVOT_LANGUAGE", "en"),
	}

	if langs := getEnv("OCR_LANGUAGES", "en"); langs != "" {
		for _, l := range strings.Split(langs, ",") {
			if l = strings.TrimSpace(l); l != "" {
				cfg.OCRLanguages = append(cfg.OCRLanguages, l)
			}
		}
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "neuron-dev-secret"
		log.Print("config: JWT_SECRET not set, using the development secret")
	}
	return cfg
}
