package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/service/blob"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Blob holds CLI flags for attachment storage
type Blob struct {
	backend string
	bucket  string
	prefix  string
}

// Flags returns CLI flags for blob storage configuration
func (b *Blob) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "blob-backend",
			Usage:       "Attachment storage backend (memory or gcs)",
			Value:       "memory",
			Category:    "Storage",
			Sources:     cli.EnvVars("THEMIS_BLOB_BACKEND"),
			Destination: &b.backend,
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket (required when using gcs backend)",
			Category:    "Storage",
			Sources:     cli.EnvVars("THEMIS_GCS_BUCKET"),
			Destination: &b.bucket,
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix inside the bucket",
			Category:    "Storage",
			Sources:     cli.EnvVars("THEMIS_GCS_PREFIX"),
			Destination: &b.prefix,
		},
	}
}

// Configure returns the blob store and a function releasing it
func (b *Blob) Configure(ctx context.Context) (interfaces.BlobStore, func(), error) {
	switch b.backend {
	case "gcs":
		if b.bucket == "" {
			return nil, nil, goerr.New("gcs-bucket is required when using gcs backend")
		}
		var opts []blob.GCSOption
		if b.prefix != "" {
			opts = append(opts, blob.WithObjectPrefix(b.prefix))
		}
		store, err := blob.NewGCS(ctx, b.bucket, opts...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize cloud storage", goerr.V("bucket", b.bucket))
		}
		logging.Default().Info("Using Cloud Storage for attachments", "bucket", b.bucket, "prefix", b.prefix)
		return store, func() {
			if err := store.Close(); err != nil {
				logging.Default().Error("failed to close cloud storage client", "error", err.Error())
			}
		}, nil

	case "", "memory":
		logging.Default().Info("Using in-memory attachment storage (development mode)")
		return blob.NewMemory(), func() {}, nil

	default:
		return nil, nil, goerr.New("invalid blob backend", goerr.V("backend", b.backend))
	}
}
