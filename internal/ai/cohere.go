package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

const defaultCohereBaseURL = "https://api.cohere.com/v2"

type cohereConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Timeout int    `json:"timeout"`
}

// cohereReranker speaks the Cohere /rerank protocol (also served by Jina and several gateways).
// Those APIs return probabilities, which are mapped back to logits.
type cohereReranker struct {
	model   string
	apiKey  string
	baseURL string
	client  *http.Client
}

type cohereRerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type cohereRerankItem struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

type cohereRerankResponse struct {
	Results []cohereRerankItem `json:"results"`
}

func (r *cohereReranker) Name() string {
	return "cohere"
}

func (r *cohereReranker) Score(ctx context.Context, query string, documents []string) ([]float64, error) {
	if len(documents) == 0 {
		return nil, nil
	}
	if r.apiKey == "" {
		return nil, ErrUnavailable
	}
	data, err := json.Marshal(cohereRerankRequest{Model: r.model, Query: query, Documents: documents, TopN: len(documents)})
	if err != nil {
		return nil, err
	}
	endpoint := strings.TrimRight(r.baseURL, "/") + "/rerank"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cohere rerank failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	var out cohereRerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return scatterScores(len(documents), out.Results, func(it cohereRerankItem) (int, float64) {
		return it.Index, Logit(it.RelevanceScore)
	})
}

// Logit is the inverse of the logistic function, with p clamped away from 0 and 1.
func Logit(p float64) float64 {
	const eps = 1e-6
	p = math.Min(math.Max(p, eps), 1-eps)
	return math.Log(p / (1 - p))
}

func createCohereReranker(model string, args interface{}) (IReranker, error) {
	cfg := &cohereConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultCohereBaseURL
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &cohereReranker{
		model:   model,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func init() {
	RegisterRerank("cohere", createCohereReranker)
}
