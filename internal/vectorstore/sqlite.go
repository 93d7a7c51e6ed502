package vectorstore

import (
	"context"
	"fmt"

	"github.com/xxxsen/ghostkube/internal/repo"
)

type sqliteConfig struct {
	Path string `json:"path"`
}

func init() {
	Register("sqlite", createSQLiteStore)
}

func createSQLiteStore(args interface{}, deps Deps) (Store, error) {
	cfg := &sqliteConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite store path is required")
	}
	db, err := repo.OpenSQLite(context.Background(), cfg.Path)
	if err != nil {
		return nil, err
	}
	return &repoStore{chunkRepo: repo.NewSQLiteChunkRepo(db), closer: db.Close}, nil
}
