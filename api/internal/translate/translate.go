// Package translate wraps the translation collaborator. The LibreTranslate
// wire format is the lowest common denominator of the self-hosted services
// this backend is deployed next to.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Null leaves text untouched, which is exactly the degraded behavior the
// assembler wants on translation failure.
type Null struct{}

func (Null) Translate(ctx context.Context, text, target string) (string, error) {
	return text, nil
}

type Client struct {
	URL    string
	APIKey string
	httpc  *http.Client
}

func New(url, apiKey string) *Client {
	return &Client{
		URL:    strings.TrimSpace(url),
		APIKey: strings.TrimSpace(apiKey),
		httpc:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Translate(ctx context.Context, text, target string) (string, error) {
	if c.URL == "" {
		return text, fmt.Errorf("translate: URL is empty")
	}
	payload, _ := json.Marshal(map[string]string{
		"q":       text,
		"source":  "auto",
		"target":  target,
		"api_key": c.APIKey,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return text, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return text, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return text, fmt.Errorf("translate %d: %s", resp.StatusCode, string(b))
	}

	var out struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return text, err
	}
	if strings.TrimSpace(out.TranslatedText) == "" {
		return text, nil
	}
	return out.TranslatedText, nil
}
