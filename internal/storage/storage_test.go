package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	_, err := s.Download(ctx, "cases", "a/b/c.csv")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Upload(ctx, "cases", "a/b/c.csv", strings.NewReader("v1"), 2, "application/csv"))
	require.NoError(t, s.Upload(ctx, "cases", "a/b/c.csv", strings.NewReader("v2"), 2, "application/csv"))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "application/csv", s.ContentType("cases", "a/b/c.csv"))

	ok, err := s.Exists(ctx, "cases", "a/b/c.csv")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists(ctx, "other", "a/b/c.csv")
	require.NoError(t, err)
	assert.False(t, ok)

	rc, err := s.Download(ctx, "cases", "a/b/c.csv")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestDetectStorageType(t *testing.T) {
	assert.Equal(t, StorageTypeR2, detectStorageType("https://acct.r2.cloudflarestorage.com"))
	assert.Equal(t, StorageTypeS3, detectStorageType("s3.eu-west-1.amazonaws.com"))
	assert.Equal(t, StorageTypeMinIO, detectStorageType("minio.local:9000"))
	assert.Equal(t, StorageTypeMemory, detectStorageType(""))
}

func TestNormalizeEndpoint(t *testing.T) {
	assert.Equal(t, "minio.local:9000", normalizeEndpoint("http://minio.local:9000/"))
	assert.Equal(t, "s3.example.com", normalizeEndpoint("https://s3.example.com/bucket/path"))
}

func TestNewStorage(t *testing.T) {
	s, err := NewStorage(&S3Config{Type: StorageTypeMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, s)

	m, err := NewStorage(&S3Config{Type: StorageTypeMinIO, Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s"})
	require.NoError(t, err)
	assert.IsType(t, &MinIOStorage{}, m)

	_, err = NewStorage(&S3Config{Type: "ftp"})
	assert.Error(t, err)
}
