package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"simregistry-backend/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// PhotoURLPrefix is the root-relative prefix of every photo reference
const PhotoURLPrefix = "/uploads/"

// DefaultMaxPhotoBytes is the upload ceiling (5 MiB)
const DefaultMaxPhotoBytes int64 = 5 * 1024 * 1024

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrInvalidReference     = errors.New("invalid photo reference")
)

// allowedPhotoTypes maps accepted MIME types to their canonical extension
var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// declaredJPEGAliases are non-standard JPEG types some clients send
var declaredJPEGAliases = map[string]bool{
	"image/jpg":   true,
	"image/pjpeg": true,
}

var allowedPhotoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// PhotoStore validates, names and persists uploaded photos on a Storage backend.
// References have the form /uploads/<unix-millis>-<uuid><ext>.
type PhotoStore struct {
	backend  Storage
	maxBytes int64
	now      func() time.Time
	newID    func() uuid.UUID
}

// PhotoStoreOption is a functional option for PhotoStore
type PhotoStoreOption func(*PhotoStore)

// WithMaxPhotoBytes sets the upload size ceiling
func WithMaxPhotoBytes(n int64) PhotoStoreOption {
	return func(p *PhotoStore) {
		if n > 0 {
			p.maxBytes = n
		}
	}
}

// WithClock sets the time source used for generated names
func WithClock(now func() time.Time) PhotoStoreOption {
	return func(p *PhotoStore) {
		p.now = now
	}
}

// NewPhotoStore creates a photo store over backend
func NewPhotoStore(backend Storage, opts ...PhotoStoreOption) *PhotoStore {
	p := &PhotoStore{
		backend:  backend,
		maxBytes: DefaultMaxPhotoBytes,
		now:      time.Now,
		newID:    uuid.New,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MaxBytes returns the configured size ceiling
func (p *PhotoStore) MaxBytes() int64 {
	return p.maxBytes
}

// Store validates the upload and persists it, returning its reference
func (p *PhotoStore) Store(ctx context.Context, upload models.PhotoUpload) (string, error) {
	if upload.Body == nil {
		return "", fmt.Errorf("%w: empty upload", ErrUnsupportedMediaType)
	}
	if upload.Size > p.maxBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds maximum of %d bytes", ErrPayloadTooLarge, upload.Size, p.maxBytes)
	}

	declared := normalizeContentType(upload.ContentType)
	if declared != "" && declared != "application/octet-stream" {
		if _, ok := allowedPhotoTypes[declared]; !ok && !declaredJPEGAliases[declared] {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedMediaType, declared)
		}
	}

	// Read one byte past the limit so oversized bodies with an unknown size are caught
	data, err := io.ReadAll(io.LimitReader(upload.Body, p.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		return "", fmt.Errorf("%w: exceeds maximum of %d bytes", ErrPayloadTooLarge, p.maxBytes)
	}

	contentType, ext, ok := detectPhotoType(data)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mimetype.Detect(data).String())
	}

	if original := strings.ToLower(filepath.Ext(upload.Filename)); allowedPhotoExtensions[original] {
		ext = original
	}

	name := fmt.Sprintf("%d-%s%s", p.now().UnixMilli(), p.newID().String(), ext)
	if err := p.backend.Upload(ctx, name, contentType, bytes.NewReader(data)); err != nil {
		return "", err
	}

	return PhotoURLPrefix + name, nil
}

// Delete removes the photo behind ref. Deleting an absent photo is a no-op.
func (p *PhotoStore) Delete(ctx context.Context, ref string) error {
	name, err := PhotoName(ref)
	if err != nil {
		return err
	}
	return p.backend.Delete(ctx, name)
}

// Exists reports whether the photo behind ref is stored
func (p *PhotoStore) Exists(ctx context.Context, ref string) (bool, error) {
	name, err := PhotoName(ref)
	if err != nil {
		return false, err
	}
	return p.backend.Exists(ctx, name)
}

// Open streams the photo with the given generated name
func (p *PhotoStore) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if _, err := PhotoName(PhotoURLPrefix + name); err != nil {
		return nil, "", err
	}
	reader, err := p.backend.Download(ctx, name)
	if err != nil {
		return nil, "", err
	}
	return reader, contentTypeForExt(filepath.Ext(name)), nil
}

// PhotoName extracts the generated file name from a reference
func PhotoName(ref string) (string, error) {
	name, ok := strings.CutPrefix(ref, PhotoURLPrefix)
	if !ok || name == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}
	return name, nil
}

func detectPhotoType(data []byte) (string, string, bool) {
	detected := mimetype.Detect(data)
	for contentType, ext := range allowedPhotoTypes {
		if detected.Is(contentType) {
			return contentType, ext, true
		}
	}
	return "", "", false
}

func normalizeContentType(contentType string) string {
	contentType, _, _ = strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(contentType))
}

func contentTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
