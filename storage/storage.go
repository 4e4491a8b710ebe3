// Package storage persists exported deliverables (preview PNG/JPEG/WebP,
// FITS files) to a backend named by config.Config.Storage — local disk or
// an S3-compatible bucket (spec §2's deliverable-export row).
package storage

import (
	"context"
	"io"

	"github.com/melix/astro4j-sub008/apperrors"
)

// Key addresses one stored object: Bucket is a logical grouping (a
// directory locally, an actual bucket on S3), Path is the object name
// within it.
type Key struct {
	Bucket string
	Path   string
}

// Adapter is the narrow persistence surface every storage backend
// implements.
type Adapter interface {
	Put(ctx context.Context, key Key, r io.Reader, meta map[string]string) error
	Get(ctx context.Context, key Key) (io.ReadCloser, error)
	Delete(ctx context.Context, key Key) error
	Exists(ctx context.Context, key Key) (bool, error)
}

// ErrKeyNotFound is returned by Local.Get when key does not exist.
// Local.Delete treats a missing key as success, and S3 reports client
// errors as they come.
var ErrKeyNotFound = apperrors.ErrNotFound
