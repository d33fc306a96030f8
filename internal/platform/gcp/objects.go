package gcp

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"cloud.google.com/go/storage"

	"github.com/yungbote/hetiograph/internal/platform/logger"
)

// ObjectReader opens gs://bucket/object URLs. The storage client is created
// on first use so runs that only read local files never need credentials.
type ObjectReader struct {
	log *logger.Logger
	cfg Config

	once   sync.Once
	client *storage.Client
	err    error
}

func NewObjectReader(log *logger.Logger, cfg Config) *ObjectReader {
	return &ObjectReader{log: log.Named("GCSObjectReader"), cfg: cfg}
}

// ParseURL splits gs://bucket/path/to/object.
func ParseURL(raw string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(raw), "gs://")
	if !ok {
		return "", "", fmt.Errorf("gcs: not a gs:// url: %q", raw)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("gcs: expected gs://bucket/object, got %q", raw)
	}
	return bucket, object, nil
}

func (r *ObjectReader) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	bucket, object, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	client, err := r.storageClient(ctx)
	if err != nil {
		return nil, err
	}
	rc, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs: open %s: %w", url, err)
	}
	r.log.Debug("gcs object opened", "bucket", bucket, "object", object, "size", rc.Attrs.Size)
	return rc, nil
}

func (r *ObjectReader) storageClient(ctx context.Context) (*storage.Client, error) {
	r.once.Do(func() {
		r.client, r.err = storage.NewClient(ctx, r.cfg.clientOptions()...)
		if r.err != nil {
			r.err = fmt.Errorf("gcs: create storage client: %w", r.err)
		}
	})
	return r.client, r.err
}

func (r *ObjectReader) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
