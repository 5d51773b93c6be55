// Package blobstore provides the storage abstraction behind checkpoints.
//
// A Store holds immutable named blobs (checkpoint payloads and manifests).
// Names use forward slashes regardless of the backend. Implementations must
// be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests
//   - LocalStore: local filesystem with atomic rename-on-write
//   - s3.Store: Amazon S3 with CRC32C-checked puts and multipart uploads
//   - minio.Store: MinIO and other S3-compatible storage
//
// # Custom Implementations
//
//	type Store interface {
//	    Put(ctx, name, data) error
//	    Get(ctx, name) ([]byte, error)
//	    List(ctx, prefix) ([]string, error)
//	    Delete(ctx, name) error
//	}
package blobstore
