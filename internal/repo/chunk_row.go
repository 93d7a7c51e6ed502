package repo

import (
	"encoding/json"
	"fmt"

	"github.com/xxxsen/ghostkube/internal/model"
)

const chunkTable = "chunks"

type chunkRow struct {
	ID       string  `db:"id"`
	Content  string  `db:"content"`
	Metadata []byte  `db:"metadata"`
	Distance float64 `db:"distance"`
}

func (r chunkRow) toCandidate(rank int) (model.Candidate, error) {
	meta := model.FlatMap{}
	if len(r.Metadata) > 0 {
		if err := json.Unmarshal(r.Metadata, &meta); err != nil {
			return model.Candidate{}, fmt.Errorf("decode metadata of %s: %w", r.ID, err)
		}
	}
	return model.Candidate{
		ID:       r.ID,
		Text:     r.Content,
		Metadata: meta,
		Distance: r.Distance,
		Rank:     rank,
	}, nil
}

func toCandidates(rows []chunkRow) ([]model.Candidate, error) {
	out := make([]model.Candidate, 0, len(rows))
	for i, row := range rows {
		c, err := row.toCandidate(i)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// chunkRecords turns items into insert rows, keeping only the last item per id.
func chunkRecords(items []model.IndexedChunk, now int64, embed func([]float32) (interface{}, error)) ([]map[string]interface{}, error) {
	index := make(map[string]int, len(items))
	records := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if item.Chunk.ID == "" {
			return nil, fmt.Errorf("chunk id is required")
		}
		if len(item.Vector) == 0 {
			return nil, fmt.Errorf("chunk %s has an empty vector", item.Chunk.ID)
		}
		meta := item.Chunk.Metadata
		if meta == nil {
			meta = model.FlatMap{}
		}
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return nil, fmt.Errorf("encode metadata of %s: %w", item.Chunk.ID, err)
		}
		embedding, err := embed(item.Vector)
		if err != nil {
			return nil, fmt.Errorf("encode embedding of %s: %w", item.Chunk.ID, err)
		}
		record := map[string]interface{}{
			"id":         item.Chunk.ID,
			"source_ref": item.Chunk.SourceRef,
			"content":    item.Chunk.ContextualText(),
			"metadata":   string(metaJSON),
			"embedding":  embedding,
			"mtime":      now,
		}
		if i, ok := index[item.Chunk.ID]; ok {
			records[i] = record
			continue
		}
		index[item.Chunk.ID] = len(records)
		records = append(records, record)
	}
	return records, nil
}
