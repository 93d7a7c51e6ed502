package ai

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

type teiConfig struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
	Timeout int    `json:"timeout"`
}

// teiReranker calls a Text-Embeddings-Inference cross-encoder. raw_scores asks the server for
// logits instead of sigmoid outputs.
type teiReranker struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type teiRerankRequest struct {
	Query     string   `json:"query"`
	Texts     []string `json:"texts"`
	RawScores bool     `json:"raw_scores"`
	Truncate  bool     `json:"truncate"`
}

type teiRerankItem struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

func (r *teiReranker) Name() string {
	return "tei"
}

func (r *teiReranker) Score(ctx context.Context, query string, documents []string) ([]float64, error) {
	if len(documents) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(teiRerankRequest{Query: query, Texts: documents, RawScores: true, Truncate: true})
	if err != nil {
		return nil, err
	}
	endpoint := strings.TrimRight(r.baseURL, "/") + "/rerank"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tei rerank failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	var items []teiRerankItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, err
	}
	return scatterScores(len(documents), items, func(it teiRerankItem) (int, float64) { return it.Index, it.Score })
}

// scatterScores places index-tagged scores back in document order and requires one score per
// document.
func scatterScores[T any](n int, items []T, get func(T) (int, float64)) ([]float64, error) {
	if len(items) != n {
		return nil, fmt.Errorf("rerank returned %d scores for %d documents", len(items), n)
	}
	out := make([]float64, n)
	seen := make([]bool, n)
	for _, it := range items {
		idx, score := get(it)
		if idx < 0 || idx >= n || seen[idx] {
			return nil, fmt.Errorf("rerank returned invalid index %d", idx)
		}
		seen[idx] = true
		out[idx] = score
	}
	return out, nil
}

func createTEIReranker(model string, args interface{}) (IReranker, error) {
	cfg := &teiConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("tei reranker requires base_url")
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &teiReranker{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func init() {
	RegisterRerank("tei", createTEIReranker)
}
