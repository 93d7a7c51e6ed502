package ai

import (
	"context"
	"fmt"
	"strings"
)

// IReranker scores (query, document) pairs. Scores are raw logits in document order; higher
// means more relevant.
type IReranker interface {
	Score(ctx context.Context, query string, documents []string) ([]float64, error)
	Name() string
}

type RerankerFactory func(model string, args interface{}) (IReranker, error)

var rerankRegistry = map[string]RerankerFactory{}

func RegisterRerank(name string, factory RerankerFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	rerankRegistry[key] = factory
}

// NewReranker returns nil without error when no provider is named; callers then fall back to
// vector similarity.
func NewReranker(name string, model string, args interface{}) (IReranker, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || key == "none" {
		return nil, nil
	}
	factory := rerankRegistry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported rerank provider: %s", name)
	}
	return factory(model, args)
}
