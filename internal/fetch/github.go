package fetch

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/xxxsen/ghostkube/internal/model"
)

// defaultGithubRate keeps under the authenticated 5000 requests/hour quota.
const defaultGithubRate = 1.2

type GithubOptions struct {
	Token   string
	BaseURL string
	Timeout time.Duration
	Filter  Filter
	// Rate is requests per second; 0 uses the default.
	Rate float64
}

// GithubFetcher lists a repository tree and downloads every kept file as a document
// whose source ref is owner/repo/path.
type GithubFetcher struct {
	gh      *gh.Client
	limiter *rate.Limiter
	filter  Filter
}

func NewGithubFetcher(opts GithubOptions) (*GithubFetcher, error) {
	httpClient := &http.Client{}
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	httpClient.Timeout = opts.Timeout
	client := gh.NewClient(httpClient)
	if opts.BaseURL != "" {
		base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse github base url: %w", err)
		}
		client.BaseURL = base
	}
	r := opts.Rate
	if r <= 0 {
		r = defaultGithubRate
	}
	return &GithubFetcher{
		gh:      client,
		limiter: rate.NewLimiter(rate.Limit(r), 1),
		filter:  opts.Filter,
	}, nil
}

type repoLocation struct {
	owner string
	repo  string
	ref   string
	dir   string
}

func parseRepoURL(rawURL string) (repoLocation, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return repoLocation{}, err
	}
	parts := splitPath(u.Path)
	if len(parts) < 2 {
		return repoLocation{}, fmt.Errorf("not a repository url: %s", rawURL)
	}
	loc := repoLocation{owner: parts[0], repo: strings.TrimSuffix(parts[1], ".git")}
	if len(parts) >= 4 && parts[2] == "tree" {
		loc.ref = parts[3]
		loc.dir = strings.Join(parts[4:], "/")
	}
	return loc, nil
}

func (f *GithubFetcher) Fetch(ctx context.Context, rawURL string) ([]model.Document, error) {
	loc, err := parseRepoURL(rawURL)
	if err != nil {
		return nil, fetchErr("parse url", err)
	}
	logger := logutil.GetLogger(ctx).With(zap.String("owner", loc.owner), zap.String("repo", loc.repo))

	if loc.ref == "" {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fetchErr("rate limit wait", err)
		}
		repository, _, err := f.gh.Repositories.Get(ctx, loc.owner, loc.repo)
		if err != nil {
			return nil, fetchErr("get repo", err)
		}
		loc.ref = repository.GetDefaultBranch()
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fetchErr("rate limit wait", err)
	}
	tree, _, err := f.gh.Git.GetTree(ctx, loc.owner, loc.repo, loc.ref, true)
	if err != nil {
		return nil, fetchErr("get tree", err)
	}
	if tree.GetTruncated() {
		logger.Warn("repository tree truncated, some files are skipped")
	}

	var docs []model.Document
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		p := entry.GetPath()
		if loc.dir != "" && !strings.HasPrefix(p, loc.dir+"/") {
			continue
		}
		if !f.filter.Keep(p, int64(entry.GetSize())) {
			logger.Debug("skip file", zap.String("path", p))
			continue
		}
		content, err := f.blob(ctx, loc, entry.GetSHA())
		if err != nil {
			return nil, fetchErr("get blob "+p, err)
		}
		docs = append(docs, model.Document{
			SourceRef: loc.owner + "/" + loc.repo + "/" + p,
			RawText:   content,
		})
	}
	logger.Info("repository fetched", zap.String("ref", loc.ref), zap.Int("files", len(docs)))
	return docs, nil
}

func (f *GithubFetcher) blob(ctx context.Context, loc repoLocation, sha string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}
	blob, _, err := f.gh.Git.GetBlob(ctx, loc.owner, loc.repo, sha)
	if err != nil {
		return "", err
	}
	if blob.GetEncoding() != "base64" {
		return blob.GetContent(), nil
	}
	raw := strings.ReplaceAll(blob.GetContent(), "\n", "")
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("decode blob %s: %w", sha, err)
	}
	return string(data), nil
}
