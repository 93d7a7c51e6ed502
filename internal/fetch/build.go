package fetch

import (
	"time"

	"github.com/xxxsen/ghostkube/internal/config"
	"github.com/xxxsen/ghostkube/internal/filestore"
)

// New wires the http, GitHub and object store fetchers from configuration.
func New(cfg config.FetchConfig) (*Router, error) {
	filter := Filter{Extensions: cfg.Extensions, Ignore: cfg.Ignore, MaxFileSize: cfg.MaxFileSize}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	githubFetcher, err := NewGithubFetcher(GithubOptions{
		Token:   cfg.GithubToken,
		BaseURL: cfg.GithubBaseURL,
		Timeout: timeout,
		Filter:  filter,
	})
	if err != nil {
		return nil, err
	}
	var stores []filestore.Store
	if cfg.FileStore.Type != "" {
		st, err := filestore.New(cfg.FileStore)
		if err != nil {
			return nil, err
		}
		stores = append(stores, st)
	}
	return NewRouter(
		NewHTTPFetcher(timeout, filter),
		WithGithub(githubFetcher, "github.com"),
		WithObject(NewObjectFetcher(filter, timeout, stores...)),
	), nil
}
