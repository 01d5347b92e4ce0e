// Package blob stores donation photos and resolves display URLs for them.
package blob

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

// Driver identifies a blob storage backend.
type Driver string

const (
	// DriverSQLite keeps blobs in the application database and serves them
	// from /api/images/{key}.
	DriverSQLite Driver = "sqlite"
	// DriverS3 stores blobs in an S3 / MinIO compatible bucket and hands out
	// pre-signed URLs.
	DriverS3 Driver = "s3"
)

// DefaultURLExpiry is how long a pre-signed URL stays valid.
const DefaultURLExpiry = 15 * time.Minute

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("blob not found")

// Store is the blob storage used for donation images.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
	// URL returns an address a browser can load the blob from.
	URL(ctx context.Context, key string) (string, error)
	Driver() Driver
}

// NewKey returns a fresh random key with the given extension (e.g. ".jpg").
func NewKey(ext string) string {
	return uuid.NewString() + ext
}
