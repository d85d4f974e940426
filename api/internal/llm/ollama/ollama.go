// Package ollama talks to a locally hosted Ollama daemon over its native
// /api/generate endpoint. Multimodal models (llava and friends) take the
// image as a base64 element of the images array on the same endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Engine struct {
	BaseURL string
	Model   string
	httpc   *http.Client
}

func New(baseURL, model string) *Engine {
	return &Engine{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Model:   strings.TrimSpace(model),
		httpc:   &http.Client{Timeout: 180 * time.Second},
	}
}

func (e *Engine) Name() string { return "ollama" }

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Images  []string       `json:"images,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (e *Engine) Invoke(ctx context.Context, prompt string) (string, error) {
	return e.generate(ctx, prompt, nil)
}

func (e *Engine) InvokeImage(ctx context.Context, prompt string, image []byte, mime string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("ollama: empty image")
	}
	return e.generate(ctx, prompt, []string{base64.StdEncoding.EncodeToString(image)})
}

func (e *Engine) generate(ctx context.Context, prompt string, images []string) (string, error) {
	if e.BaseURL == "" {
		return "", fmt.Errorf("ollama: base URL is empty")
	}
	payload, _ := json.Marshal(generateRequest{
		Model:   e.Model,
		Prompt:  prompt,
		Images:  images,
		Stream:  false,
		Options: map[string]any{"temperature": 0},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama %d: %s", resp.StatusCode, truncate(b, 512))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Response), nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
