package repo

import (
	"context"
	"time"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"github.com/xxxsen/ghostkube/internal/model"
	"github.com/xxxsen/ghostkube/internal/pkg/dbutil"
)

const chunkUpsertSuffix = ` ON CONFLICT (id) DO UPDATE SET
	source_ref = EXCLUDED.source_ref,
	content = EXCLUDED.content,
	metadata = EXCLUDED.metadata,
	embedding = EXCLUDED.embedding,
	mtime = EXCLUDED.mtime`

// ChunkRepo stores chunks in Postgres with a pgvector embedding column.
type ChunkRepo struct {
	db *sqlx.DB
}

func NewChunkRepo(db *sqlx.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

func (r *ChunkRepo) Upsert(ctx context.Context, items []model.IndexedChunk) error {
	if len(items) == 0 {
		return nil
	}
	records, err := chunkRecords(items, time.Now().Unix(), func(v []float32) (interface{}, error) {
		return pgvector.NewVector(v), nil
	})
	if err != nil {
		return err
	}
	sqlStr, args, err := builder.BuildInsert(chunkTable, records)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr+chunkUpsertSuffix, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ChunkRepo) Query(ctx context.Context, vec []float32, k int) ([]model.Candidate, error) {
	if k <= 0 {
		return []model.Candidate{}, nil
	}
	const query = `
		SELECT id, content, metadata, embedding <=> $1 AS distance
		FROM chunks
		ORDER BY embedding <=> $1 ASC, id ASC
		LIMIT $2
	`
	var rows []chunkRow
	if err := r.db.SelectContext(ctx, &rows, query, pgvector.NewVector(vec), k); err != nil {
		return nil, err
	}
	return toCandidates(rows)
}

func (r *ChunkRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(1) FROM chunks"); err != nil {
		return 0, err
	}
	return n, nil
}
