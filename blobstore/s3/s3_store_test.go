package s3

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/kanakanji/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStore_Open(t *testing.T) {
	client := new(MockS3Client)
	store := NewStore(client, "dicts", WithPrefix("ja"))

	client.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return aws.ToString(in.Key) == "ja/missing"
	})).Return(nil, &types.NotFound{}).Once()
	client.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return aws.ToString(in.Bucket) == "dicts" && aws.ToString(in.Key) == "ja/v1/manifest.json"
	})).Return(&s3.HeadObjectOutput{ContentLength: aws.Int64(100)}, nil).Once()

	_, err := store.Open(context.Background(), "missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	blob, err := store.Open(context.Background(), "v1/manifest.json")
	require.NoError(t, err)
	assert.Equal(t, int64(100), blob.Size())
	client.AssertExpectations(t)
}

func TestBlob_ReadAt(t *testing.T) {
	client := new(MockS3Client)
	b := &blob{client: client, bucket: "dicts", key: "ja/shard", size: 10}

	client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Range) == "bytes=6-9"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("6789"))}, nil).Once()

	buf := make([]byte, 8)
	n, err := b.ReadAt(context.Background(), buf, 6)
	assert.Equal(t, 4, n)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, "6789", string(buf[:n]))

	n, err = b.ReadAt(context.Background(), buf, 10)
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err)
	client.AssertExpectations(t)
}

func TestStore_PutSmall(t *testing.T) {
	client := new(MockS3Client)
	store := NewStore(client, "dicts", WithPrefix("ja/"))

	data := []byte("v1/manifest.json")
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Key) == "ja/CURRENT" &&
			aws.ToString(in.ChecksumCRC32C) == computeCRC32C(data) &&
			aws.ToInt64(in.ContentLength) == int64(len(data))
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, store.Put(context.Background(), blobstore.CurrentName, data))
	client.AssertExpectations(t)
}

func TestStore_Delete(t *testing.T) {
	client := new(MockS3Client)
	store := NewStore(client, "dicts", WithPrefix("ja"))

	client.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return aws.ToString(in.Key) == "ja/old"
	})).Return(&s3.DeleteObjectOutput{}, nil).Once()

	require.NoError(t, store.Delete(context.Background(), "old"))
	client.AssertExpectations(t)
}

func TestStore_ListPagination(t *testing.T) {
	client := new(MockS3Client)
	store := NewStore(client, "dicts", WithPrefix("ja/"))

	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return in.ContinuationToken == nil && aws.ToString(in.Prefix) == "ja/v1/"
	})).Return(&s3.ListObjectsV2Output{
		Contents:              []types.Object{{Key: aws.String("ja/v1/b.louds")}},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("page2"),
	}, nil).Once()
	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.ContinuationToken) == "page2"
	})).Return(&s3.ListObjectsV2Output{
		Contents:    []types.Object{{Key: aws.String("ja/v1/a.louds")}},
		IsTruncated: aws.Bool(false),
	}, nil).Once()

	names, err := store.List(context.Background(), "v1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1/a.louds", "v1/b.louds"}, names)
	client.AssertExpectations(t)
}

func TestComputeCRC32C(t *testing.T) {
	// CRC32C("123456789") = 0xe3069283, big-endian then base64.
	assert.Equal(t, "4waSgw==", computeCRC32C([]byte("123456789")))
}

func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}
	ctx := context.Background()
	store, err := New(ctx, bucket, WithPrefix(fmt.Sprintf("test-kanakanji-%d/", time.Now().UnixNano())))
	require.NoError(t, err)

	data := make([]byte, 9<<20) // above the part size, exercises multipart
	_, _ = rand.Read(data)
	require.NoError(t, store.Put(ctx, "v1/big.loudstxt3", data))
	t.Cleanup(func() { _ = store.Delete(ctx, "v1/big.loudstxt3") })

	got, err := blobstore.Get(ctx, store, "v1/big.loudstxt3")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "v1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1/big.loudstxt3"}, names)
}
