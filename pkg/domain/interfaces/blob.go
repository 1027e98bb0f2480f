package interfaces

import (
	"context"
	"io"
)

// BlobStore keeps the bytes of uploaded attachments
type BlobStore interface {
	Put(ctx context.Context, path string, contentType string, r io.Reader) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}
