package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/viant/sqlite-vec/vector"

	"github.com/xxxsen/ghostkube/internal/model"
)

func init() {
	Register("memory", func(args interface{}, deps Deps) (Store, error) {
		return NewMemoryStore(), nil
	})
}

type memoryEntry struct {
	text   string
	meta   model.FlatMap
	vector []float32
}

// MemoryStore is a brute-force cosine index held in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	dim     int
	entries map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Upsert(ctx context.Context, items []model.IndexedChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dim := s.dim
	for _, item := range items {
		if item.Chunk.ID == "" {
			return fmt.Errorf("chunk id is required")
		}
		if len(item.Vector) == 0 {
			return fmt.Errorf("chunk %s has an empty vector", item.Chunk.ID)
		}
		if dim == 0 {
			dim = len(item.Vector)
		}
		if len(item.Vector) != dim {
			return fmt.Errorf("vector dimension mismatch: got %d, index has %d", len(item.Vector), dim)
		}
	}
	s.dim = dim
	for _, item := range items {
		s.entries[item.Chunk.ID] = memoryEntry{
			text:   item.Chunk.ContextualText(),
			meta:   item.Chunk.Metadata.Clone(),
			vector: append([]float32(nil), item.Vector...),
		}
	}
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, vec []float32, k int) ([]model.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if k <= 0 || len(s.entries) == 0 {
		return []model.Candidate{}, nil
	}
	if len(vec) != s.dim {
		return nil, fmt.Errorf("vector dimension mismatch: got %d, index has %d", len(vec), s.dim)
	}
	hits := make([]model.Candidate, 0, len(s.entries))
	for id, e := range s.entries {
		hits = append(hits, model.Candidate{ID: id, Text: e.text, Metadata: e.meta.Clone(), Distance: cosineDistance(vec, e.vector)})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	for i := range hits {
		hits[i].Rank = i
	}
	return hits, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// cosineDistance is 1 - cosine similarity. Dimensions are checked by the caller, so the only
// failure left is a zero-magnitude vector, which is treated as orthogonal.
func cosineDistance(a, b []float32) float64 {
	sim, err := vector.CosineSimilarity(a, b)
	if err != nil {
		return 1
	}
	return 1 - sim
}
