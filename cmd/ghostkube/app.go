package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/ghostkube/internal/ai"
	"github.com/xxxsen/ghostkube/internal/chunker"
	"github.com/xxxsen/ghostkube/internal/config"
	"github.com/xxxsen/ghostkube/internal/db"
	"github.com/xxxsen/ghostkube/internal/embedcache"
	"github.com/xxxsen/ghostkube/internal/fetch"
	"github.com/xxxsen/ghostkube/internal/pipeline"
	"github.com/xxxsen/ghostkube/internal/repo"
	"github.com/xxxsen/ghostkube/internal/service"
	"github.com/xxxsen/ghostkube/internal/vectorstore"
)

// app holds everything the subcommands share.
type app struct {
	cfg       *config.Config
	db        *sqlx.DB
	store     vectorstore.Store
	cacheRepo *repo.EmbeddingCacheRepo
	pipe      *pipeline.Pipeline
	ingest    *service.IngestService
	search    *service.SearchService
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func initLogger(cfg *config.Config) {
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}
	if cfg.Database.Enabled() {
		conn, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.db = conn
		a.cacheRepo = repo.NewEmbeddingCacheRepo(conn)
	}

	store, err := vectorstore.New(cfg.VectorStore, vectorstore.Deps{DB: a.db})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init vector store: %w", err)
	}
	a.store = store

	embedder, err := buildEmbedder(cfg, a.cacheRepo)
	if err != nil {
		a.Close()
		return nil, err
	}
	reranker, err := buildReranker(cfg.Reranker)
	if err != nil {
		a.Close()
		return nil, err
	}
	splitter, err := chunker.NewSplitter(
		chunker.WithChunkSize(cfg.Chunk.Size),
		chunker.WithOverlap(*cfg.Chunk.Overlap),
		chunker.WithMinSignal(cfg.Chunk.MinSignal),
		chunker.WithMode(chunker.Mode(cfg.Chunk.Mode)),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init splitter: %w", err)
	}
	fetcher, err := fetch.New(cfg.Fetch)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init fetcher: %w", err)
	}

	a.pipe = pipeline.New(store, embedder, reranker, splitter, pipeline.Options{
		EmbedBatchSize: cfg.Ingest.EmbedBatchSize,
		RecallWidth:    cfg.Retrieval.RecallWidth,
		PreviewLength:  cfg.Retrieval.PreviewLength,
	})
	a.ingest = service.NewIngestService(fetcher, a.pipe, cfg.Ingest.Concurrency)
	a.search = service.NewSearchService(a.pipe, a.ingest, cfg.Retrieval.CacheSize,
		time.Duration(cfg.Retrieval.CacheTTLSeconds)*time.Second)

	logutil.GetLogger(ctx).Info("components ready",
		zap.String("vector_store", cfg.VectorStore.Type),
		zap.String("embedder", a.pipe.EmbedderName()),
		zap.String("reranker", a.pipe.RerankerName()),
		zap.Bool("database", a.db != nil),
	)
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func buildEmbedder(cfg *config.Config, cacheRepo *repo.EmbeddingCacheRepo) (ai.IEmbedder, error) {
	entries := make([]ai.EmbedderEntry, 0, 1+len(cfg.Embedder.Fallbacks))
	for _, pc := range append([]config.ProviderConfig{cfg.Embedder.ProviderConfig}, cfg.Embedder.Fallbacks...) {
		provider, err := ai.NewEmbedProvider(pc.Provider, pc.Data)
		if err != nil {
			return nil, fmt.Errorf("init embed provider %s: %w", pc.Provider, err)
		}
		entries = append(entries, ai.EmbedderEntry{Name: pc.Provider, Embedder: ai.NewEmbedder(provider, pc.Model)})
	}
	embedder := ai.NewGroupEmbedder(entries)
	if cfg.Embedder.DBCache && cacheRepo != nil {
		embedder = embedcache.WrapDBCacheToEmbedder(embedder, cacheRepo)
	}
	if cfg.Embedder.LRUSize > 0 {
		embedder = embedcache.WrapLruCacheToEmbedder(embedder, cfg.Embedder.LRUSize,
			time.Duration(cfg.Embedder.LRUTTLSeconds)*time.Second)
	}
	return embedder, nil
}

// buildReranker returns nil for distance-only retrieval.
func buildReranker(pc config.ProviderConfig) (ai.IReranker, error) {
	r, err := ai.NewReranker(pc.Provider, pc.Model, pc.Data)
	if err != nil {
		return nil, fmt.Errorf("init reranker %s: %w", pc.Provider, err)
	}
	return r, nil
}
