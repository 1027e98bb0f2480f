package blob

import (
	"context"
	"errors"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/utils/safe"
)

// GCS stores blobs in a Google Cloud Storage bucket
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ interfaces.BlobStore = &GCS{}

type GCSOption func(*GCS)

// WithObjectPrefix prepends prefix to every object name
func WithObjectPrefix(prefix string) GCSOption {
	return func(g *GCS) {
		g.prefix = strings.Trim(prefix, "/")
	}
}

func NewGCS(ctx context.Context, bucket string, opts ...GCSOption) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("GCS bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	g := &GCS{client: client, bucket: bucket}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *GCS) object(path string) *storage.ObjectHandle {
	name := path
	if g.prefix != "" {
		name = g.prefix + "/" + path
	}
	return g.client.Bucket(g.bucket).Object(name)
}

func (g *GCS) Put(ctx context.Context, path string, contentType string, r io.Reader) error {
	w := g.object(path).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		safe.Close(ctx, w)
		return goerr.Wrap(err, "failed to upload blob", goerr.V("bucket", g.bucket), goerr.V("path", path))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize blob upload", goerr.V("bucket", g.bucket), goerr.V("path", path))
	}
	return nil
}

func (g *GCS) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	reader, err := g.object(path).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(ErrObjectNotFound, "blob not found", goerr.V("bucket", g.bucket), goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to open blob", goerr.V("bucket", g.bucket), goerr.V("path", path))
	}
	return reader, nil
}

func (g *GCS) Delete(ctx context.Context, path string) error {
	if err := g.object(path).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return goerr.Wrap(ErrObjectNotFound, "blob not found", goerr.V("bucket", g.bucket), goerr.V("path", path))
		}
		return goerr.Wrap(err, "failed to delete blob", goerr.V("bucket", g.bucket), goerr.V("path", path))
	}
	return nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}
