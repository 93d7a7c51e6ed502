package testutil

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/xxxsen/ghostkube/internal/ai"
)

// CountingEmbedder wraps an embedder and counts batch calls and embedded texts.
type CountingEmbedder struct {
	Next  ai.IEmbedder
	Calls atomic.Int64
	Texts atomic.Int64
	Err   error
}

// NewHashingEmbedder is a deterministic in-process embedder for tests.
func NewHashingEmbedder(dim int) *CountingEmbedder {
	return &CountingEmbedder{Next: ai.NewEmbedder(ai.NewHashingProvider(dim), "hashing-test")}
}

func (c *CountingEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	res, err := c.EmbedBatch(ctx, []string{text}, taskType)
	if err != nil {
		return nil, err
	}
	return res[0], nil
}

func (c *CountingEmbedder) EmbedBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	c.Calls.Add(1)
	c.Texts.Add(int64(len(texts)))
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Next.EmbedBatch(ctx, texts, taskType)
}

func (c *CountingEmbedder) ModelName() string {
	return c.Next.ModelName()
}

// FuncReranker scores with a plain function and records calls.
type FuncReranker struct {
	Fn    func(query, doc string) float64
	Err   error
	Short bool

	mu    sync.Mutex
	calls int
}

var ErrRerankDown = errors.New("reranker down")

func (r *FuncReranker) Name() string {
	return "func"
}

func (r *FuncReranker) Score(ctx context.Context, query string, documents []string) ([]float64, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]float64, 0, len(documents))
	for _, d := range documents {
		out = append(out, r.Fn(query, d))
	}
	if r.Short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (r *FuncReranker) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
