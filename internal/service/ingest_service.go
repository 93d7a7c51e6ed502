package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xxxsen/ghostkube/internal/fetch"
	"github.com/xxxsen/ghostkube/internal/model"
	appErr "github.com/xxxsen/ghostkube/internal/pkg/errors"
	"github.com/xxxsen/ghostkube/internal/pipeline"
)

type IngestRequest struct {
	URL        string
	SourceType string
	Metadata   map[string]interface{}
}

// IngestService fetches a URL and ingests every document behind it concurrently.
type IngestService struct {
	fetcher     fetch.Fetcher
	pipe        *pipeline.Pipeline
	concurrency int
	generation  atomic.Uint64
}

func NewIngestService(fetcher fetch.Fetcher, pipe *pipeline.Pipeline, concurrency int) *IngestService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &IngestService{fetcher: fetcher, pipe: pipe, concurrency: concurrency}
}

// Generation changes whenever an ingest may have written to the index.
func (s *IngestService) Generation() uint64 {
	return s.generation.Load()
}

// IngestURL reports error with zeroed counters if the fetch or any document fails.
func (s *IngestService) IngestURL(ctx context.Context, req IngestRequest) model.IngestResult {
	logger := logutil.GetLogger(ctx).With(zap.String("url", req.URL))
	if strings.TrimSpace(req.URL) == "" {
		return model.IngestFailure(appErr.New(appErr.ErrValidation, "url is required"))
	}
	docs, err := s.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		logger.Error("fetch failed", zap.Error(err))
		return model.IngestFailure(err)
	}
	logger.Info("source fetched", zap.Int("documents", len(docs)))
	return s.IngestDocuments(ctx, docs, req.SourceType, req.Metadata)
}

// IngestDocuments runs the pipeline over docs with bounded concurrency. The first failing
// document cancels the rest.
func (s *IngestService) IngestDocuments(ctx context.Context, docs []model.Document, sourceType string, meta map[string]interface{}) model.IngestResult {
	if len(docs) == 0 {
		return model.IngestResult{Status: model.IngestStatusSuccess, Message: "no documents found"}
	}
	defer s.generation.Add(1)

	var (
		mu     sync.Mutex
		chunks int
		chars  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := s.pipe.Ingest(gctx, pipeline.IngestInput{
				SourceRef:  doc.SourceRef,
				RawText:    doc.RawText,
				SourceType: sourceType,
				Metadata:   meta,
			})
			if !res.OK() {
				return fmt.Errorf("%s: %w", doc.SourceRef, res.Err)
			}
			mu.Lock()
			chunks += res.ChunksIngested
			chars += res.TotalCharacters
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.IngestFailure(err)
	}
	return model.IngestResult{
		Status:          model.IngestStatusSuccess,
		ChunksIngested:  chunks,
		TotalCharacters: chars,
		Message:         fmt.Sprintf("ingested %d chunks from %d documents", chunks, len(docs)),
	}
}
