// Package minio provides a blobstore.Store implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible storage systems like Ceph,
// SeaweedFS and Garage, without pulling in the AWS SDK.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "layouts/")
//	w := checkpoint.NewWriter(store, "run-1")
package minio
