// Package fetch turns source URLs into documents ready for ingestion.
package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/xxxsen/ghostkube/internal/model"
	appErr "github.com/xxxsen/ghostkube/internal/pkg/errors"
)

// Fetcher retrieves the documents behind a URL. Failures carry ErrFetch.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]model.Document, error)
}

// Router dispatches on scheme and host: GitHub repository URLs, object store URLs
// (s3://, file://) and finally plain http(s).
type Router struct {
	github     Fetcher
	githubHost string
	object     Fetcher
	http       Fetcher
}

type RouterOption func(*Router)

func WithGithub(f Fetcher, host string) RouterOption {
	return func(r *Router) {
		r.github = f
		r.githubHost = strings.ToLower(host)
	}
}

func WithObject(f Fetcher) RouterOption {
	return func(r *Router) {
		r.object = f
	}
}

func NewRouter(httpFetcher Fetcher, opts ...RouterOption) *Router {
	r := &Router{http: httpFetcher, githubHost: "github.com"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) Fetch(ctx context.Context, rawURL string) ([]model.Document, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" {
		return nil, appErr.New(appErr.ErrFetch, "invalid url %q", rawURL)
	}
	switch strings.ToLower(u.Scheme) {
	case "s3", "file":
		if r.object == nil {
			return nil, appErr.New(appErr.ErrFetch, "no object store configured for %s", u.Scheme)
		}
		return r.object.Fetch(ctx, rawURL)
	case "http", "https":
		if r.github != nil && strings.EqualFold(u.Hostname(), r.githubHost) && isRepoPath(u.Path) {
			return r.github.Fetch(ctx, rawURL)
		}
		if r.http == nil {
			return nil, appErr.New(appErr.ErrFetch, "no http fetcher configured")
		}
		return r.http.Fetch(ctx, rawURL)
	}
	return nil, appErr.New(appErr.ErrFetch, "unsupported url scheme %q", u.Scheme)
}

// isRepoPath matches /owner/repo and /owner/repo/tree/<ref>[/dir].
func isRepoPath(p string) bool {
	parts := splitPath(p)
	switch {
	case len(parts) == 2:
		return true
	case len(parts) >= 4 && parts[2] == "tree":
		return true
	}
	return false
}

func splitPath(p string) []string {
	var parts []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return parts
}

func fetchErr(op string, err error) error {
	return appErr.Wrap(appErr.ErrFetch, op, err)
}

func statusErr(rawURL string, status string) error {
	return appErr.Wrap(appErr.ErrFetch, "fetch "+rawURL, fmt.Errorf("unexpected status %s", status))
}
