package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/ghostkube/internal/model"
)

const maxBodySize = 32 << 20

// HTTPFetcher downloads a single page. A body that is a bundled markdown dump is
// split into one document per file.
type HTTPFetcher struct {
	client *http.Client
	filter Filter
}

func NewHTTPFetcher(timeout time.Duration, filter Filter) *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}, filter: filter}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]model.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fetchErr("build request", err)
	}
	req.Header.Set("User-Agent", "ghostkube")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fetchErr("fetch "+rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, statusErr(rawURL, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fetchErr("read "+rawURL, err)
	}
	if len(body) > maxBodySize {
		return nil, fetchErr("read "+rawURL, fmt.Errorf("body exceeds %d bytes", maxBodySize))
	}
	text := string(body)
	if docs, ok := SplitBundle(text, f.filter); ok {
		logutil.GetLogger(ctx).Info("bundle split",
			zap.String("url", rawURL), zap.Int("documents", len(docs)))
		return docs, nil
	}
	return []model.Document{{SourceRef: rawURL, RawText: text}}, nil
}
