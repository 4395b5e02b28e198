// Package blobstore provides content-addressed storage for image
// payloads. Blobs are named by the sha256 of their content, so
// identical uploads resolve to the same stored file.
package blobstore

import (
	"context"
	"errors"
	"io"
)

// ErrBlobNotFound is returned when a requested blob does not exist.
var ErrBlobNotFound = errors.New("blob not found")

// ErrInvalidName is returned when a blob name does not have the
// expected <hex-digest>.<ext> shape or names a disallowed extension.
var ErrInvalidName = errors.New("invalid blob name")

// BlobStore defines the contract for content-addressed binary storage.
type BlobStore interface {
	// Put stores the bytes read from r and returns the blob name
	// (fingerprint) derived from their sha256 digest. Storing the same
	// content twice returns the same name and writes at most one file.
	Put(ctx context.Context, r io.Reader) (string, error)

	// Get opens a blob for reading. The name must pass ValidateName.
	// Returns ErrBlobNotFound if the blob does not exist.
	Get(ctx context.Context, name string) (io.ReadCloser, error)

	// Has checks whether a blob with the given name exists.
	Has(ctx context.Context, name string) (bool, error)
}
