// Package piper is a client for a piper-http style synthesizer: JSON text in,
// raw audio bytes out.
package piper

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

type Client struct {
	URL   string
	httpc *http.Client
}

func New(url string) *Client {
	return &Client{
		URL:   strings.TrimSpace(url),
		httpc: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("tts: URL is empty")
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	payload, _ := json.Marshal(map[string]string{
		"text":     text,
		"language": language,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tts %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}
