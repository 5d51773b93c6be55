package blobstore

import (
	"context"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store reads and writes whole immutable blobs.
type Store interface {
	// Put writes a blob atomically, replacing any previous blob of that name.
	Put(ctx context.Context, name string, data []byte) error

	// Get returns the full contents of a blob.
	Get(ctx context.Context, name string) ([]byte, error)

	// List returns the sorted names of all blobs starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
}
