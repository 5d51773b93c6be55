package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/umapsgd/blobstore"
	miniostore "github.com/hupe1980/umapsgd/blobstore/minio"
	s3store "github.com/hupe1980/umapsgd/blobstore/s3"
)

// openStore resolves a checkpoint location:
//
//	/path/to/dir or file:///path/to/dir    local directory
//	s3://bucket/prefix                      Amazon S3 (default AWS credential chain)
//	minio://host:port/bucket/prefix         MinIO (MINIO_* or AWS_* env credentials)
//
// minio:// accepts ?secure=false for plain HTTP endpoints.
func openStore(ctx context.Context, uri string) (blobstore.Store, error) {
	if uri == "" {
		return nil, errors.New("empty store location")
	}
	if !strings.Contains(uri, "://") {
		return blobstore.NewLocalStore(uri), nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse store location: %w", err)
	}

	switch u.Scheme {
	case "file":
		if u.Path == "" {
			return nil, fmt.Errorf("file location %q has no path", uri)
		}
		return blobstore.NewLocalStore(u.Path), nil

	case "s3":
		if u.Host == "" {
			return nil, fmt.Errorf("s3 location %q has no bucket", uri)
		}
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		return s3store.NewStore(awss3.NewFromConfig(cfg), u.Host, u.Path), nil

	case "minio":
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		if u.Host == "" || bucket == "" {
			return nil, fmt.Errorf("minio location %q needs host and bucket", uri)
		}
		client, err := minio.New(u.Host, &minio.Options{
			Creds: credentials.NewChainCredentials([]credentials.Provider{
				&credentials.EnvMinio{},
				&credentials.EnvAWS{},
			}),
			Secure: u.Query().Get("secure") != "false",
		})
		if err != nil {
			return nil, fmt.Errorf("create minio client: %w", err)
		}
		return miniostore.NewStore(client, bucket, prefix), nil

	default:
		return nil, fmt.Errorf("unsupported store scheme %q", u.Scheme)
	}
}
