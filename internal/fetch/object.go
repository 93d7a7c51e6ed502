package fetch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/ghostkube/internal/filestore"
	"github.com/xxxsen/ghostkube/internal/model"
)

// ObjectFetcher reads every kept object under an s3://bucket/prefix or file:///dir URL.
type ObjectFetcher struct {
	stores  map[string]filestore.Store
	filter  Filter
	timeout time.Duration
	maxSize int64
}

var storeSchemes = map[string]string{"local": "file", "s3": "s3"}

// NewObjectFetcher serves file:// from a local store and s3:// from an s3 store. A scheme
// without a store is rejected, so file:// paths only resolve below a configured dir.
// Each list and each object read is bounded by timeout when it is positive.
func NewObjectFetcher(filter Filter, timeout time.Duration, stores ...filestore.Store) *ObjectFetcher {
	f := &ObjectFetcher{
		stores:  make(map[string]filestore.Store, len(stores)),
		filter:  filter,
		timeout: timeout,
		maxSize: maxBodySize,
	}
	for _, st := range stores {
		if st == nil {
			continue
		}
		if scheme, ok := storeSchemes[st.Type()]; ok {
			f.stores[scheme] = st
		}
	}
	return f
}

func (f *ObjectFetcher) Fetch(ctx context.Context, rawURL string) ([]model.Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fetchErr("parse url", err)
	}
	scheme := strings.ToLower(u.Scheme)
	store, ok := f.stores[scheme]
	if !ok {
		return nil, fetchErr("fetch "+rawURL, fmt.Errorf("no file_store configured for scheme %s", scheme))
	}
	prefix := strings.TrimPrefix(u.Path, "/")
	if scheme == "s3" {
		if b, ok := store.(interface{ Bucket() string }); ok && b.Bucket() != u.Host {
			return nil, fetchErr("fetch "+rawURL, fmt.Errorf("bucket %s is not configured", u.Host))
		}
	}
	objs, err := f.list(ctx, store, prefix)
	if err != nil {
		return nil, fetchErr("list "+rawURL, err)
	}
	var docs []model.Document
	for _, obj := range objs {
		if !f.filter.Keep(obj.Key, obj.Size) {
			continue
		}
		text, err := f.readObject(ctx, store, obj.Key)
		if err != nil {
			return nil, fetchErr("read "+obj.Key, err)
		}
		ref := url.URL{Scheme: scheme, Host: u.Host, Path: "/" + obj.Key}
		docs = append(docs, model.Document{SourceRef: ref.String(), RawText: text})
	}
	logutil.GetLogger(ctx).Info("object source fetched",
		zap.String("url", rawURL), zap.Int("listed", len(objs)), zap.Int("documents", len(docs)))
	return docs, nil
}

func (f *ObjectFetcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.timeout)
}

func (f *ObjectFetcher) list(ctx context.Context, store filestore.Store, prefix string) ([]filestore.Object, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	return store.List(ctx, prefix)
}

func (f *ObjectFetcher) readObject(ctx context.Context, store filestore.Store, key string) (string, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	rc, err := store.Open(ctx, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, f.maxSize+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > f.maxSize {
		return "", fmt.Errorf("object exceeds %d bytes", f.maxSize)
	}
	return string(data), nil
}
