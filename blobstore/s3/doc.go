// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "layouts/run-1")
//	w := checkpoint.NewWriter(store, "ckpt")
//
// # Features
//
//   - CRC32C checksums on every put
//   - Multipart uploads for payloads above the part size
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
