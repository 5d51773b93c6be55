package minio

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/umapsgd/blobstore"
)

func TestTranslateError(t *testing.T) {
	notFound := minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}
	assert.ErrorIs(t, translateError(notFound), blobstore.ErrNotFound)

	denied := minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403}
	assert.False(t, errors.Is(translateError(denied), blobstore.ErrNotFound))
}

func TestStore_Key(t *testing.T) {
	assert.Equal(t, "runs/a/epoch-000001.emb", NewStore(nil, "b", "/runs/a/").key("epoch-000001.emb"))
	assert.Equal(t, "epoch-000001.emb", NewStore(nil, "b", "").key("epoch-000001.emb"))
}

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := "localhost:9000"
	accessKey := "minioadmin"
	secretKey := "minioadmin"
	bucket := "test-umapsgd"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	// Check if MinIO is reachable
	_, err = client.ListBuckets(ctx)
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		err = client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
		require.NoError(t, err)
	}

	store := NewStore(client, bucket, "test-prefix/")

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "ckpt/epoch-000001.emb", data))

	got, err := store.Get(ctx, "ckpt/epoch-000001.emb")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "ckpt/")
	require.NoError(t, err)
	assert.Contains(t, names, "ckpt/epoch-000001.emb")

	require.NoError(t, store.Delete(ctx, "ckpt/epoch-000001.emb"))
	require.NoError(t, store.Delete(ctx, "ckpt/epoch-000001.emb"))

	_, err = store.Get(ctx, "ckpt/epoch-000001.emb")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
