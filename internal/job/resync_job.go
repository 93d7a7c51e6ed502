package job

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/ghostkube/internal/model"
	"github.com/xxxsen/ghostkube/internal/service"
)

type urlIngester interface {
	IngestURL(ctx context.Context, req service.IngestRequest) model.IngestResult
}

// ResyncJob re-ingests a fixed list of sources. Upserts are keyed by content, so an
// unchanged source only rewrites the same rows.
type ResyncJob struct {
	ingester   urlIngester
	urls       []string
	sourceType string
}

func NewResyncJob(ingester urlIngester, urls []string, sourceType string) *ResyncJob {
	return &ResyncJob{ingester: ingester, urls: urls, sourceType: sourceType}
}

func (j *ResyncJob) Name() string {
	return "resync"
}

// Run visits every url even when one fails and reports how many failed.
func (j *ResyncJob) Run(ctx context.Context) error {
	logger := logutil.GetLogger(ctx)
	failed := 0
	for _, u := range j.urls {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := j.ingester.IngestURL(ctx, service.IngestRequest{URL: u, SourceType: j.sourceType})
		if !res.OK() {
			failed++
			logger.Error("resync source failed", zap.String("url", u), zap.String("message", res.Message))
			continue
		}
		logger.Info("resync source done", zap.String("url", u), zap.Int("chunks", res.ChunksIngested))
	}
	if failed > 0 {
		return fmt.Errorf("resync: %d of %d sources failed", failed, len(j.urls))
	}
	return nil
}
