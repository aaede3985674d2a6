package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	cfg "github.com/templui/sneakerbase/internal/config"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrObjectExists   = errors.New("object already exists")
)

// ObjectInfo is the metadata the store keeps for an object.
type ObjectInfo struct {
	Size        int64
	ContentType string
}

// Storage is the binary object store holding sneaker images
type Storage interface {
	// Save stores the content at key. The write is conditional: when an
	// object already exists at key it fails with ErrObjectExists.
	Save(ctx context.Context, key string, body io.Reader, size int64, contentType string) error

	// Stat returns the object's metadata or ErrObjectNotFound
	Stat(ctx context.Context, key string) (*ObjectInfo, error)

	// PresignedGetURL returns a time limited download URL for key
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// PresignedPutURL returns a time limited URL a client can PUT content to
	PresignedPutURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// New creates the storage backend selected by STORAGE_BACKEND.
// "s3" (default) covers AWS S3, Cloudflare R2, DigitalOcean Spaces and similar;
// "minio" talks to a MinIO server through its native client.
func New(c *cfg.Config) (Storage, error) {
	slog.Info("initializing object storage",
		"backend", c.StorageBackend,
		"bucket", c.S3Bucket,
		"region", c.S3Region,
		"endpoint", c.S3Endpoint,
	)

	switch c.StorageBackend {
	case "", "s3":
		return NewS3Storage(S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	case "minio":
		return NewMinioStorage(MinioConfig{
			Endpoint:  c.S3Endpoint,
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			UseSSL:    c.S3UseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
}
