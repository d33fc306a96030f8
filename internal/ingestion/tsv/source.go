package tsv

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/yungbote/hetiograph/internal/domain"
	perrors "github.com/yungbote/hetiograph/internal/pkg/errors"
)

// RemoteOpener opens a non-local URL such as gs://bucket/object.
type RemoteOpener interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// Opener resolves input paths: local files, gs:// objects when Remote is set,
// and transparent gunzip for names ending in .gz.
type Opener struct {
	Remote RemoteOpener
}

func (o *Opener) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, perrors.MalformedInput("open input", "", "empty path", nil)
	}

	var (
		rc  io.ReadCloser
		err error
	)
	if strings.HasPrefix(path, "gs://") {
		if o == nil || o.Remote == nil {
			return nil, perrors.MalformedInput("open input", path, "gs:// inputs are not configured", nil)
		}
		rc, err = o.Remote.Open(ctx, path)
	} else {
		rc, err = os.Open(path)
	}
	if err != nil {
		return nil, perrors.MalformedInput("open input", path, "unreadable", err)
	}

	if !strings.HasSuffix(strings.ToLower(path), ".gz") {
		return rc, nil
	}
	zr, err := gzip.NewReader(rc)
	if err != nil {
		_ = rc.Close()
		return nil, perrors.MalformedInput("open input", path, "invalid gzip stream", err)
	}
	return &gzipReadCloser{Reader: zr, under: rc}, nil
}

type gzipReadCloser struct {
	*gzip.Reader
	under io.Closer
}

func (g *gzipReadCloser) Close() error {
	zerr := g.Reader.Close()
	if err := g.under.Close(); err != nil {
		return err
	}
	return zerr
}

// LoadNodes opens and parses a nodes file.
func (o *Opener) LoadNodes(ctx context.Context, path string) (*NodeFile, error) {
	rc, err := o.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadNodes(rc, path)
}

// LoadEdges opens and parses an edges file.
func (o *Opener) LoadEdges(ctx context.Context, path string) (*EdgeFile, error) {
	rc, err := o.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadEdges(rc, path)
}

// Rejections converts row errors into load-report rejections.
func Rejections(path string, bad []RowError) []domain.Rejection {
	out := make([]domain.Rejection, 0, len(bad))
	for _, b := range bad {
		out = append(out, domain.Rejection{Line: b.Line, Key: path, Reason: fmt.Sprintf("malformed row: %s", b.Reason)})
	}
	return out
}
