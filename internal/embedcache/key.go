package embedcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/xxxsen/ghostkube/internal/ai"
)

type cacheKey struct {
	full        string
	contentHash string
	model       string
}

func buildCacheKey(modelName, taskType, text string) cacheKey {
	modelName = strings.TrimSpace(modelName)
	if modelName == "" {
		modelName = "unknown"
	}
	hash := sha256.Sum256([]byte(text))
	contentHash := hex.EncodeToString(hash[:])
	return cacheKey{
		full:        "embed:" + modelName + ":" + taskType + ":" + contentHash,
		contentHash: contentHash,
		model:       modelName,
	}
}

type lookupFunc func(ctx context.Context, keys []cacheKey) (map[int][]float32, error)
type storeFunc func(ctx context.Context, key cacheKey, vec []float32)

// embedThrough serves texts from the cache where possible and embeds only the misses, in one
// batch call. It returns the vectors in input order and the number of hits.
func embedThrough(ctx context.Context, next ai.IEmbedder, modelName string, texts []string, taskType string,
	lookup lookupFunc, store storeFunc) ([][]float32, int, error) {
	if len(texts) == 0 {
		return nil, 0, nil
	}
	keys := make([]cacheKey, len(texts))
	for i, text := range texts {
		keys[i] = buildCacheKey(modelName, taskType, text)
	}
	hits, err := lookup(ctx, keys)
	if err != nil {
		return nil, 0, err
	}
	out := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string
	for i, text := range texts {
		if vec, ok := hits[i]; ok {
			out[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}
	if len(missTexts) == 0 {
		return out, len(hits), nil
	}
	res, err := next.EmbedBatch(ctx, missTexts, taskType)
	if err != nil {
		return nil, 0, err
	}
	if len(res) != len(missTexts) {
		return nil, 0, fmt.Errorf("embedder returned %d vectors for %d inputs", len(res), len(missTexts))
	}
	for j, idx := range missIdx {
		out[idx] = res[j]
		store(ctx, keys[idx], res[j])
	}
	return out, len(hits), nil
}
