package vectorstore_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/ghostkube/internal/config"
	"github.com/xxxsen/ghostkube/internal/model"
	"github.com/xxxsen/ghostkube/internal/vectorstore"
)

func item(id, text string, vec ...float32) model.IndexedChunk {
	return model.IndexedChunk{
		Chunk: model.Chunk{
			ID:        id,
			Text:      text,
			SourceRef: "repo/" + id,
			Header:    "File: repo/" + id + "\n",
			Metadata:  model.FlatMap{"source_ref": model.StringValue("repo/" + id)},
		},
		Vector: vec,
	}
}

func openStores(t *testing.T) map[string]vectorstore.Store {
	t.Helper()
	mem, err := vectorstore.New(config.VectorStoreConfig{Type: "memory"}, vectorstore.Deps{})
	require.NoError(t, err)
	lite, err := vectorstore.New(config.VectorStoreConfig{
		Type: "sqlite",
		Data: map[string]interface{}{"path": filepath.Join(t.TempDir(), "index.db")},
	}, vectorstore.Deps{})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = mem.Close()
		_ = lite.Close()
	})
	return map[string]vectorstore.Store{"memory": mem, "sqlite": lite}
}

func TestStoresUpsertQueryCount(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			n, err := store.Count(ctx)
			require.NoError(t, err)
			require.Equal(t, 0, n)

			require.NoError(t, store.Upsert(ctx, []model.IndexedChunk{
				item("near", "close match", 1, 0.1),
				item("far", "opposite", -1, 0),
				item("mid", "orthogonal", 0, 1),
			}))
			require.NoError(t, store.Upsert(ctx, []model.IndexedChunk{item("near", "close match", 1, 0.1)}))
			n, err = store.Count(ctx)
			require.NoError(t, err)
			require.Equal(t, 3, n)

			got, err := store.Query(ctx, []float32{1, 0}, 10)
			require.NoError(t, err)
			require.Len(t, got, 3)
			require.Equal(t, []string{"near", "mid", "far"}, []string{got[0].ID, got[1].ID, got[2].ID})
			require.Equal(t, "File: repo/near\nclose match", got[0].Text)
			require.InDelta(t, 2.0, got[2].Distance, 1e-6)
			for i, c := range got {
				require.Equal(t, i, c.Rank)
				require.GreaterOrEqual(t, c.Distance, 0.0)
				require.LessOrEqual(t, c.Distance, 2.0)
			}

			top, err := store.Query(ctx, []float32{1, 0}, 1)
			require.NoError(t, err)
			require.Len(t, top, 1)
		})
	}
}

func TestStoresConcurrentUpsert(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var wg sync.WaitGroup
			errs := make(chan error, 8)
			for w := 0; w < 8; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					for i := 0; i < 10; i++ {
						// half the ids collide across workers
						id := fmt.Sprintf("chunk-%d", (w%4)*10+i)
						if err := store.Upsert(ctx, []model.IndexedChunk{item(id, "text", 1, float32(i))}); err != nil {
							errs <- err
							return
						}
					}
				}(w)
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}
			n, err := store.Count(ctx)
			require.NoError(t, err)
			require.Equal(t, 40, n)
		})
	}
}

func TestStoresZeroMagnitudeVectors(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Upsert(ctx, []model.IndexedChunk{
				item("a", "along x", 1, 0),
				item("b", "against x", -1, 0),
				item("z", "nowhere", 0, 0),
			}))
			got, err := store.Query(ctx, []float32{3, 0}, 3)
			require.NoError(t, err)
			require.Equal(t, []string{"a", "z", "b"}, []string{got[0].ID, got[1].ID, got[2].ID})
			require.InDelta(t, 0, got[0].Distance, 1e-6)
			require.InDelta(t, 1, got[1].Distance, 1e-6)
			require.InDelta(t, 2, got[2].Distance, 1e-6)

			got, err = store.Query(ctx, []float32{0, 0}, 3)
			require.NoError(t, err)
			require.Len(t, got, 3)
			for _, c := range got {
				require.InDelta(t, 1, c.Distance, 1e-6)
			}
		})
	}
}

func TestMemoryStoreDimensionMismatch(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, []model.IndexedChunk{item("a", "t", 1, 0)}))
	require.Error(t, store.Upsert(ctx, []model.IndexedChunk{item("b", "t", 1, 0, 0)}))
	_, err := store.Query(ctx, []float32{1, 0, 0}, 3)
	require.Error(t, err)
}

func TestMemoryStoreEmptyQuery(t *testing.T) {
	got, err := vectorstore.NewMemoryStore().Query(context.Background(), []float32{1}, 5)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestNewRejectsUnknownAndMisconfigured(t *testing.T) {
	_, err := vectorstore.New(config.VectorStoreConfig{Type: "faiss"}, vectorstore.Deps{})
	require.Error(t, err)
	_, err = vectorstore.New(config.VectorStoreConfig{Type: "sqlite"}, vectorstore.Deps{})
	require.Error(t, err)
	_, err = vectorstore.New(config.VectorStoreConfig{Type: "pgvector"}, vectorstore.Deps{})
	require.Error(t, err)
}
