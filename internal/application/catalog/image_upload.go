package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
)

// ImageStorage stores product images and returns their public URL.
// Implemented by the local disk and S3 backends.
type ImageStorage interface {
	Save(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	// Delete removes a previously saved image. URLs the storage did not
	// issue are ignored.
	Delete(ctx context.Context, url string) error
}

// ImageUpload is one uploaded file as received by the transport layer
type ImageUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// UploadPolicy limits the images accepted for a single product write
type UploadPolicy struct {
	MaxFiles          int
	MaxFileSize       int64
	AllowedExtensions []string
}

// DefaultUploadPolicy returns five files of at most 5 MB, images only
func DefaultUploadPolicy() UploadPolicy {
	return UploadPolicy{
		MaxFiles:          catalog.MaxProductImages,
		MaxFileSize:       5 << 20,
		AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".webp"},
	}
}

// sniffLen is the prefix mimetype inspects by default
const sniffLen = 3072

// allowedContentTypes is checked against the declared type and against the
// type sniffed from the file contents. SVG is excluded: it can carry scripts.
var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// Validate checks count, size, extension and content type of every upload
func (p UploadPolicy) Validate(uploads []ImageUpload) error {
	if len(uploads) > p.MaxFiles {
		return shared.NewValidationError(fmt.Sprintf("At most %d images can be uploaded", p.MaxFiles))
	}
	for _, u := range uploads {
		if u.Size <= 0 {
			return shared.NewValidationError(fmt.Sprintf("Image %s is empty", u.FileName))
		}
		if u.Size > p.MaxFileSize {
			return shared.NewValidationError(
				fmt.Sprintf("Image %s exceeds the %d MB limit", u.FileName, p.MaxFileSize>>20))
		}
		ext := strings.ToLower(filepath.Ext(u.FileName))
		if !slices.Contains(p.AllowedExtensions, ext) {
			return shared.NewValidationError("Only image files (jpg, jpeg, png, webp) are allowed")
		}
		contentType := strings.ToLower(strings.TrimSpace(strings.Split(u.ContentType, ";")[0]))
		if !allowedContentTypes[contentType] {
			return shared.NewValidationError("Only image files (jpg, jpeg, png, webp) are allowed")
		}
	}
	return nil
}

// imageKey builds the storage key of an upload: products/{productID}/{unique}{ext}
func imageKey(productID uuid.UUID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("products/%s/%s%s", productID, uuid.New(), ext)
}

// storeImages saves every upload and returns the URLs in upload order.
// On failure the images saved so far are removed again.
func storeImages(ctx context.Context, storage ImageStorage, productID uuid.UUID, uploads []ImageUpload) ([]string, error) {
	urls := make([]string, 0, len(uploads))
	for _, u := range uploads {
		url, err := storeImage(ctx, storage, productID, u)
		if err != nil {
			removeImages(ctx, storage, urls)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func storeImage(ctx context.Context, storage ImageStorage, productID uuid.UUID, u ImageUpload) (string, error) {
	body, err := u.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", u.FileName, err)
	}
	defer body.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("read upload %s: %w", u.FileName, err)
	}
	head = head[:n]
	contentType := mimetype.Detect(head).String()
	if !allowedContentTypes[contentType] {
		return "", shared.NewValidationError(
			fmt.Sprintf("Image %s is not a jpg, png or webp file", u.FileName))
	}

	content := io.MultiReader(bytes.NewReader(head), body)
	url, err := storage.Save(ctx, imageKey(productID, u.FileName), contentType, content, u.Size)
	if err != nil {
		return "", fmt.Errorf("store upload %s: %w", u.FileName, err)
	}
	return url, nil
}

// removeImages deletes images best effort; a leftover file is harmless
func removeImages(ctx context.Context, storage ImageStorage, urls []string) {
	for _, url := range urls {
		_ = storage.Delete(ctx, url)
	}
}
