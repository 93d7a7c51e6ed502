// Package pipeline holds the ingestion and two-stage retrieval flows over a vector store.
package pipeline

import (
	"context"

	"github.com/xxxsen/ghostkube/internal/ai"
	"github.com/xxxsen/ghostkube/internal/chunker"
	"github.com/xxxsen/ghostkube/internal/vectorstore"
)

const (
	DefaultEmbedBatchSize = 32
	DefaultRecallWidth    = 10
	DefaultPreviewLength  = 500
	previewEllipsis       = "..."
)

type Options struct {
	EmbedBatchSize int
	RecallWidth    int
	PreviewLength  int
}

func (o *Options) applyDefaults() {
	if o.EmbedBatchSize <= 0 {
		o.EmbedBatchSize = DefaultEmbedBatchSize
	}
	if o.RecallWidth <= 0 {
		o.RecallWidth = DefaultRecallWidth
	}
	if o.PreviewLength <= 0 {
		o.PreviewLength = DefaultPreviewLength
	}
}

// Pipeline owns the store, embedder and optional reranker shared by ingest and search.
// A nil reranker puts search in distance-only mode.
type Pipeline struct {
	store    vectorstore.Store
	embedder ai.IEmbedder
	reranker ai.IReranker
	splitter *chunker.Splitter
	opts     Options
}

func New(store vectorstore.Store, embedder ai.IEmbedder, reranker ai.IReranker, splitter *chunker.Splitter, opts Options) *Pipeline {
	opts.applyDefaults()
	return &Pipeline{
		store:    store,
		embedder: embedder,
		reranker: reranker,
		splitter: splitter,
		opts:     opts,
	}
}

func (p *Pipeline) Count(ctx context.Context) (int, error) {
	return p.store.Count(ctx)
}

func (p *Pipeline) EmbedderName() string {
	return p.embedder.ModelName()
}

func (p *Pipeline) RerankerName() string {
	if p.reranker == nil {
		return "none"
	}
	return p.reranker.Name()
}
