package pipeline

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/ghostkube/internal/ai"
	"github.com/xxxsen/ghostkube/internal/model"
	appErr "github.com/xxxsen/ghostkube/internal/pkg/errors"
)

// Search runs recall then rerank. Every failure degrades to an empty result list.
func (p *Pipeline) Search(ctx context.Context, query string, topK int) model.SearchResponse {
	logger := logutil.GetLogger(ctx).With(zap.String("query", query), zap.Int("top_k", topK))
	res, err := p.search(ctx, query, topK)
	if err != nil {
		if appErr.IsValidation(err) {
			logger.Warn("search rejected", zap.Error(err))
		} else {
			logger.Error("search failed", zap.Error(err))
		}
		return model.EmptySearch(query)
	}
	return res
}

func (p *Pipeline) search(ctx context.Context, query string, topK int) (model.SearchResponse, error) {
	if strings.TrimSpace(query) == "" {
		return model.SearchResponse{}, appErr.New(appErr.ErrValidation, "query is empty")
	}
	if topK <= 0 {
		return model.SearchResponse{}, appErr.New(appErr.ErrValidation, "top_k must be positive, got %d", topK)
	}
	total, err := p.store.Count(ctx)
	if err != nil {
		return model.SearchResponse{}, appErr.Wrap(appErr.ErrStore, "count", err)
	}
	if total == 0 {
		return model.EmptySearch(query), nil
	}
	vec, err := p.embedder.Embed(ctx, query, ai.TaskTypeQuery)
	if err != nil {
		return model.SearchResponse{}, appErr.Wrap(appErr.ErrEmbedding, "embed query", err)
	}
	n := topK
	if p.opts.RecallWidth > n {
		n = p.opts.RecallWidth
	}
	candidates, err := p.store.Query(ctx, vec, n)
	if err != nil {
		return model.SearchResponse{}, appErr.Wrap(appErr.ErrStore, "query", err)
	}
	if len(candidates) == 0 {
		return model.EmptySearch(query), nil
	}

	scores := p.score(ctx, query, candidates)
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	// candidates arrive in recall order, so a stable sort breaks ties by recall rank
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if len(order) > topK {
		order = order[:topK]
	}
	results := make([]model.SearchResult, 0, len(order))
	for _, idx := range order {
		c := candidates[idx]
		results = append(results, model.SearchResult{
			DisplayText:    Preview(c.Text, p.opts.PreviewLength),
			RelevanceScore: scores[idx],
			Metadata:       c.Metadata,
		})
	}
	return model.SearchResponse{Query: query, Results: results}, nil
}

// score returns one normalized relevance per candidate, using the reranker when it
// is configured and answers with one score per document.
func (p *Pipeline) score(ctx context.Context, query string, candidates []model.Candidate) []float64 {
	logger := logutil.GetLogger(ctx)
	if p.reranker != nil {
		docs := make([]string, len(candidates))
		for i, c := range candidates {
			docs[i] = c.Text
		}
		raw, err := p.reranker.Score(ctx, query, docs)
		switch {
		case err != nil:
			logger.Warn("rerank failed, falling back to recall distance",
				zap.String("reranker", p.reranker.Name()), zap.Error(appErr.Wrap(appErr.ErrRerank, "score", err)))
		case len(raw) != len(candidates):
			logger.Warn("rerank returned wrong number of scores, falling back to recall distance",
				zap.Int("scores", len(raw)), zap.Int("candidates", len(candidates)))
		default:
			out := make([]float64, len(raw))
			for i, r := range raw {
				out[i] = Sigmoid(r)
				logger.Debug("candidate reranked", zap.String("id", candidates[i].ID),
					zap.Float64("raw", r), zap.Float64("score", out[i]))
			}
			return out
		}
	}
	out := make([]float64, len(candidates))
	for i, c := range candidates {
		out[i] = DistanceScore(c.Distance)
	}
	return out
}

// Sigmoid maps a raw rerank logit into [0, 1]. NaN maps to 0.
func Sigmoid(raw float64) float64 {
	if math.IsNaN(raw) {
		return 0
	}
	return 1 / (1 + math.Exp(-raw))
}

// DistanceScore turns a cosine distance in [0, 2] into a similarity in [0, 1].
func DistanceScore(distance float64) float64 {
	if math.IsNaN(distance) {
		return 0
	}
	return math.Min(math.Max(1-distance/2, 0), 1)
}

// Preview caps text at limit characters, appending an ellipsis when it cut anything.
func Preview(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i] + previewEllipsis
		}
		n++
	}
	return text
}
