package embedcache

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/ghostkube/internal/ai"
	"github.com/xxxsen/ghostkube/internal/model"
)

// CacheRepo is the persistence the db cache needs; repo.EmbeddingCacheRepo implements it.
type CacheRepo interface {
	Get(ctx context.Context, modelName, taskType, contentHash string) ([]float32, bool, error)
	Save(ctx context.Context, item *model.EmbeddingCache) error
}

func WrapDBCacheToEmbedder(e ai.IEmbedder, cacheRepo CacheRepo) ai.IEmbedder {
	if e == nil || cacheRepo == nil {
		return e
	}
	return &dbEmbedder{next: e, repo: cacheRepo}
}

type dbEmbedder struct {
	next ai.IEmbedder
	repo CacheRepo
}

func (d *dbEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	res, err := d.EmbedBatch(ctx, []string{text}, taskType)
	if err != nil {
		return nil, err
	}
	return res[0], nil
}

func (d *dbEmbedder) EmbedBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	lookup := func(ctx context.Context, keys []cacheKey) (map[int][]float32, error) {
		hits := make(map[int][]float32)
		for i, key := range keys {
			values, ok, err := d.repo.Get(ctx, key.model, taskType, key.contentHash)
			if err != nil {
				return nil, err
			}
			if ok {
				hits[i] = values
			}
		}
		return hits, nil
	}
	store := func(ctx context.Context, key cacheKey, vec []float32) {
		if err := d.repo.Save(ctx, &model.EmbeddingCache{
			ModelName:   key.model,
			TaskType:    taskType,
			ContentHash: key.contentHash,
			Embedding:   vec,
			Ctime:       time.Now().Unix(),
		}); err != nil {
			logutil.GetLogger(ctx).Warn("failed to cache embedding", zap.Error(err))
		}
	}
	res, hits, err := embedThrough(ctx, d.next, d.next.ModelName(), texts, taskType, lookup, store)
	if err != nil {
		return nil, err
	}
	if hits > 0 {
		logutil.GetLogger(ctx).Debug("embedding cache hit (db)", zap.String("task_type", taskType), zap.Int("hits", hits))
	}
	return res, nil
}

func (d *dbEmbedder) ModelName() string {
	return d.next.ModelName()
}
