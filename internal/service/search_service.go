package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/xxxsen/ghostkube/internal/model"
	"github.com/xxxsen/ghostkube/internal/pipeline"
)

type generationSource interface {
	Generation() uint64
}

// SearchService memoises pipeline searches until the next ingest.
type SearchService struct {
	pipe  *pipeline.Pipeline
	gen   generationSource
	cache *expirable.LRU[string, model.SearchResponse]
}

// NewSearchService caches up to size responses for ttl; size < 0 disables the cache.
func NewSearchService(pipe *pipeline.Pipeline, gen generationSource, size int, ttl time.Duration) *SearchService {
	s := &SearchService{pipe: pipe, gen: gen}
	if size >= 0 && gen != nil {
		s.cache = expirable.NewLRU[string, model.SearchResponse](size, nil, ttl)
	}
	return s
}

func (s *SearchService) Search(ctx context.Context, q model.Query) model.SearchResponse {
	if s.cache == nil {
		return s.pipe.Search(ctx, q.Text, q.TopK)
	}
	key := fmt.Sprintf("%d|%d|%s", s.gen.Generation(), q.TopK, q.Text)
	if res, ok := s.cache.Get(key); ok {
		return res
	}
	res := s.pipe.Search(ctx, q.Text, q.TopK)
	if len(res.Results) > 0 {
		s.cache.Add(key, res)
	}
	return res
}
