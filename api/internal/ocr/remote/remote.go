// Package remote is an HTTP client for an OCR sidecar (an easyocr-server or
// compatible recognizer): base64 image in, recognized lines out.
package remote

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

type Client struct {
	URL       string
	Languages []string
	httpc     *http.Client
}

func New(url string, languages []string) *Client {
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	return &Client{
		URL:       strings.TrimSpace(url),
		Languages: languages,
		httpc:     &http.Client{Timeout: 60 * time.Second},
	}
}

type recognizeRequest struct {
	Image     string   `json:"image"` // base64
	Languages []string `json:"languages,omitempty"`
}

type recognizeResponse struct {
	Text  string   `json:"text,omitempty"`
	Lines []string `json:"lines,omitempty"`
}

func (c *Client) Read(ctx context.Context, image []byte) (string, error) {
	if c.URL == "" {
		return "", fmt.Errorf("ocr: URL is empty")
	}
	payload, _ := json.Marshal(recognizeRequest{
		Image:     base64.StdEncoding.EncodeToString(image),
		Languages: c.Languages,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ocr %d: %s", resp.StatusCode, string(b))
	}

	var out recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if t := strings.TrimSpace(out.Text); t != "" {
		return t, nil
	}
	// some recognizers emit per-line boxes instead of a joined text field
	var parts []string
	for _, l := range out.Lines {
		if s := strings.TrimSpace(l); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " "), nil
}
