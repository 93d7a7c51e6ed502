package pipeline

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/ghostkube/internal/ai"
	"github.com/xxxsen/ghostkube/internal/metadata"
	"github.com/xxxsen/ghostkube/internal/model"
	appErr "github.com/xxxsen/ghostkube/internal/pkg/errors"
)

const DefaultSourceType = "document"

type IngestInput struct {
	SourceRef  string
	RawText    string
	SourceType string
	Metadata   map[string]interface{}
}

// Ingest splits, embeds and upserts one source. It never returns an error: failures are
// reported as an error status with zeroed counters.
func (p *Pipeline) Ingest(ctx context.Context, in IngestInput) model.IngestResult {
	logger := logutil.GetLogger(ctx).With(zap.String("source_ref", in.SourceRef))
	n, err := p.ingest(ctx, in)
	if err != nil {
		logger.Error("ingest failed", zap.Error(err))
		return model.IngestFailure(err)
	}
	logger.Info("source ingested", zap.Int("chunks", n))
	return model.IngestResult{
		Status:          model.IngestStatusSuccess,
		ChunksIngested:  n,
		TotalCharacters: utf8.RuneCountInString(in.RawText),
		Message:         fmt.Sprintf("ingested %d chunks from %s", n, in.SourceRef),
	}
}

func (p *Pipeline) ingest(ctx context.Context, in IngestInput) (int, error) {
	if strings.TrimSpace(in.SourceRef) == "" {
		return 0, appErr.New(appErr.ErrValidation, "source_ref is required")
	}
	sourceType := in.SourceType
	if sourceType == "" {
		sourceType = DefaultSourceType
	}
	chunks, err := p.splitter.Split(ctx, in.RawText, in.SourceRef)
	if err != nil {
		return 0, appErr.Wrap(appErr.ErrConfig, "split", err)
	}
	for i := range chunks {
		meta, err := metadata.Merge(in.Metadata, map[string]interface{}{
			"source_ref":      in.SourceRef,
			"source_type":     sourceType,
			"ordinal":         chunks[i].Ordinal,
			"total_in_source": chunks[i].TotalInSource,
		})
		if err != nil {
			return 0, appErr.Wrap(appErr.ErrMetadata, "metadata", err)
		}
		chunks[i].Metadata = meta
	}

	for start := 0; start < len(chunks); start += p.opts.EmbedBatchSize {
		end := start + p.opts.EmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]
		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.ContextualText()
		}
		vectors, err := p.embedder.EmbedBatch(ctx, texts, ai.TaskTypeDocument)
		if err != nil {
			return 0, appErr.Wrap(appErr.ErrEmbedding, "embed", err)
		}
		if len(vectors) != len(batch) {
			return 0, appErr.New(appErr.ErrEmbedding, "embed: got %d vectors for %d chunks", len(vectors), len(batch))
		}
		items := make([]model.IndexedChunk, len(batch))
		for i, c := range batch {
			items[i] = model.IndexedChunk{Chunk: c, Vector: vectors[i]}
		}
		if err := p.store.Upsert(ctx, items); err != nil {
			return 0, appErr.Wrap(appErr.ErrStore, "upsert", err)
		}
		logutil.GetLogger(ctx).Debug("chunk batch stored",
			zap.String("source_ref", in.SourceRef), zap.Int("from", start), zap.Int("to", end))
	}
	return len(chunks), nil
}
