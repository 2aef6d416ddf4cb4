package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	infraconfig "github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalImageStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalImageStorage(dir, "uploads")
	require.NoError(t, err)

	url, err := s.Save(context.Background(), "products/a.png", "image/png", strings.NewReader("png-bytes"), 9)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/products/a.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "products", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, s.Delete(context.Background(), url))
	_, err = os.Stat(filepath.Join(dir, "products", "a.png"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	require.NoError(t, s.Delete(context.Background(), url))
}

func TestLocalImageStorage_RejectsTraversal(t *testing.T) {
	s, err := NewLocalImageStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	for _, key := range []string{"", "../evil.png", "/abs.png", "a/../../b.png"} {
		_, err := s.Save(context.Background(), key, "image/png", strings.NewReader("x"), 1)
		assert.Error(t, err, key)
	}
}

func TestLocalImageStorage_DeleteIgnoresForeignURL(t *testing.T) {
	s, err := NewLocalImageStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	assert.NoError(t, s.Delete(context.Background(), "https://cdn.example.com/x.png"))
	assert.NoError(t, s.Delete(context.Background(), "/uploads/../secret"))
}

type fakeS3 struct {
	puts      map[string]string
	deleted   []string
	headErr   error
	createErr error
	created   bool
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(in.Body)
	f.puts[aws.ToString(in.Key)] = string(body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func (f *fakeS3) CreateBucket(context.Context, *s3.CreateBucketInput, ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created = true
	return &s3.CreateBucketOutput{}, f.createErr
}

func TestS3ImageStorage_SaveAndDelete(t *testing.T) {
	fake := &fakeS3{puts: map[string]string{}}
	s := newS3ImageStorage(fake, infraconfig.StorageConfig{
		Bucket:   "images",
		Endpoint: "http://minio:9000/",
	}, zap.NewNop())

	url, err := s.Save(context.Background(), "products/b.webp", "image/webp", strings.NewReader("webp"), 4)
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/images/products/b.webp", url)
	assert.Equal(t, "webp", fake.puts["products/b.webp"])

	require.NoError(t, s.Delete(context.Background(), url))
	require.NoError(t, s.Delete(context.Background(), "/uploads/local.png"))
	assert.Equal(t, []string{"products/b.webp"}, fake.deleted)
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com", publicBaseURL(infraconfig.StorageConfig{PublicBaseURL: "https://cdn.example.com/", Bucket: "b"}))
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com", publicBaseURL(infraconfig.StorageConfig{Bucket: "b", Region: "eu-west-1"}))
}

func TestS3ImageStorage_EnsureBucket(t *testing.T) {
	t.Run("exists", func(t *testing.T) {
		fake := &fakeS3{}
		s := newS3ImageStorage(fake, infraconfig.StorageConfig{Bucket: "b"}, zap.NewNop())
		require.NoError(t, s.EnsureBucket(context.Background()))
		assert.False(t, fake.created)
	})

	t.Run("missing is created", func(t *testing.T) {
		fake := &fakeS3{headErr: &types.NotFound{}}
		s := newS3ImageStorage(fake, infraconfig.StorageConfig{Bucket: "b"}, zap.NewNop())
		require.NoError(t, s.EnsureBucket(context.Background()))
		assert.True(t, fake.created)
	})

	t.Run("other errors surface", func(t *testing.T) {
		fake := &fakeS3{headErr: errors.New("access denied")}
		s := newS3ImageStorage(fake, infraconfig.StorageConfig{Bucket: "b"}, zap.NewNop())
		assert.Error(t, s.EnsureBucket(context.Background()))
	})
}
