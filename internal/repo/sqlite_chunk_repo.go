package repo

import (
	"context"
	"strings"
	"time"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"
	"github.com/viant/sqlite-vec/vector"

	"github.com/xxxsen/ghostkube/internal/model"
)

// sqlite caps bound parameters per statement; 6 columns per row.
const sqliteInsertBatch = 100

type SQLiteChunkRepo struct {
	db *sqlx.DB
}

func NewSQLiteChunkRepo(db *sqlx.DB) *SQLiteChunkRepo {
	return &SQLiteChunkRepo{db: db}
}

func (r *SQLiteChunkRepo) Upsert(ctx context.Context, items []model.IndexedChunk) error {
	if len(items) == 0 {
		return nil
	}
	records, err := chunkRecords(items, time.Now().Unix(), encodeEmbedding)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for start := 0; start < len(records); start += sqliteInsertBatch {
		end := start + sqliteInsertBatch
		if end > len(records) {
			end = len(records)
		}
		sqlStr, args, err := builder.BuildInsert(chunkTable, records[start:end])
		if err != nil {
			return err
		}
		sqlStr = strings.Replace(sqlStr, "INSERT INTO", "INSERT OR REPLACE INTO", 1)
		if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// encodeEmbedding stores a zero-magnitude vector as NULL so vec_cosine never sees it.
func encodeEmbedding(v []float32) (interface{}, error) {
	if !hasMagnitude(v) {
		return nil, nil
	}
	return vector.EncodeEmbedding(v)
}

func hasMagnitude(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return true
		}
	}
	return false
}

// Query returns the k rows closest to vec by cosine distance, closest first. Rows without
// direction sit at distance 1.
func (r *SQLiteChunkRepo) Query(ctx context.Context, vec []float32, k int) ([]model.Candidate, error) {
	if k <= 0 {
		return []model.Candidate{}, nil
	}
	blob, err := encodeEmbedding(vec)
	if err != nil {
		return nil, err
	}
	const query = `
		SELECT id, content, metadata, COALESCE(1 - vec_cosine(embedding, ?), 1) AS distance
		FROM chunks
		ORDER BY distance ASC, id ASC
		LIMIT ?
	`
	var rows []chunkRow
	if err := r.db.SelectContext(ctx, &rows, query, blob, k); err != nil {
		return nil, err
	}
	return toCandidates(rows)
}

func (r *SQLiteChunkRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(1) FROM chunks"); err != nil {
		return 0, err
	}
	return n, nil
}
