package vectorstore

import (
	"context"
	"fmt"

	"github.com/xxxsen/ghostkube/internal/model"
	"github.com/xxxsen/ghostkube/internal/repo"
)

func init() {
	Register("pgvector", func(args interface{}, deps Deps) (Store, error) {
		if deps.DB == nil {
			return nil, fmt.Errorf("pgvector store requires a database connection")
		}
		// the connection is shared with the embedding cache and closed by its owner
		return &repoStore{chunkRepo: repo.NewChunkRepo(deps.DB)}, nil
	})
}

type chunkRepo interface {
	Upsert(ctx context.Context, items []model.IndexedChunk) error
	Query(ctx context.Context, vec []float32, k int) ([]model.Candidate, error)
	Count(ctx context.Context) (int, error)
}

// repoStore adapts a database-backed chunk repo to Store.
type repoStore struct {
	chunkRepo
	closer func() error
}

func (s *repoStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
