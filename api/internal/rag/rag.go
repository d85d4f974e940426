// Package rag is the retrieval-chain collaborator: query in, answer plus the
// source documents the chain grounded it on. The chain's prompt instructs the
// model to emit a fixed fallback phrase when the indexed documents contain
// nothing relevant; detecting that phrase is the router's job, not ours.
package rag

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

// DefaultFallbackPhrase matches the marker the retrieval prompt asks the
// model to emit on low confidence.
const DefaultFallbackPhrase = "not available in the documents"

type Result struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources,omitempty"`
}

type Retriever interface {
	Invoke(ctx context.Context, query string) (Result, error)
}

type Client struct {
	URL   string
	httpc *http.Client
}

func New(url string) *Client {
	return &Client{
		URL:   strings.TrimSpace(url),
		httpc: &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *Client) Invoke(ctx context.Context, query string) (Result, error) {
	if c.URL == "" {
		return Result{}, fmt.Errorf("rag: URL is empty")
	}
	payload, _ := json.Marshal(map[string]string{"query": query})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("rag %d: %s", resp.StatusCode, string(b))
	}

	var out struct {
		Answer  string   `json:"answer"`
		Result  string   `json:"result"`
		Sources []string `json:"sources"`
		Context []struct {
			Source string `json:"source"`
		} `json:"context_docs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, err
	}

	r := Result{Answer: strings.TrimSpace(out.Answer), Sources: out.Sources}
	if r.Answer == "" {
		r.Answer = strings.TrimSpace(out.Result)
	}
	for _, d := range out.Context {
		if s := strings.TrimSpace(d.Source); s != "" {
			r.Sources = append(r.Sources, s)
		}
	}
	return r, nil
}
