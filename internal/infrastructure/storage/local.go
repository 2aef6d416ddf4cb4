// Package storage keeps uploaded product images on local disk or in an
// S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	catalogapp "github.com/shopfront/backend/internal/application/catalog"
)

// Storage backends selectable in config
const (
	TypeLocal = "local"
	TypeS3    = "s3"
)

var _ catalogapp.ImageStorage = (*LocalImageStorage)(nil)

// LocalImageStorage writes images below a directory that the HTTP server
// exposes under a public prefix such as /uploads
type LocalImageStorage struct {
	dir    string
	prefix string
}

// NewLocalImageStorage creates the directory if needed
func NewLocalImageStorage(dir, publicPrefix string) (*LocalImageStorage, error) {
	if dir == "" {
		return nil, errors.New("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalImageStorage{
		dir:    dir,
		prefix: "/" + strings.Trim(publicPrefix, "/"),
	}, nil
}

// Save writes the image and returns its public URL path
func (s *LocalImageStorage) Save(ctx context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return path.Join(s.prefix, key), nil
}

// Delete removes an image previously returned by Save. URLs that do not
// belong to this storage are ignored.
func (s *LocalImageStorage) Delete(_ context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.prefix+"/")
	if !ok || validKey(key) != nil {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

func validKey(key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	clean := path.Clean(key)
	if clean != key || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, "..") {
		return fmt.Errorf("invalid storage key: %q", key)
	}
	return nil
}
