package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var (
	// ErrStorageFailure wraps every failure of the underlying medium
	ErrStorageFailure = errors.New("storage failure")
	// ErrObjectNotFound is returned by Download for unknown paths
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidPath is returned for paths that escape the storage root
	ErrInvalidPath = errors.New("invalid storage path")
)

// Storage interface for file storage operations
type Storage interface {
	// Upload stores data under storagePath
	Upload(ctx context.Context, storagePath string, contentType string, data io.Reader) error

	// Download retrieves a file by storage path
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Exists reports whether a file is present at storage path
	Exists(ctx context.Context, storagePath string) (bool, error)

	// Delete removes a file by storage path; missing files are not an error
	Delete(ctx context.Context, storagePath string) error
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string // For S3 storage
	AWSAccessKey string
	AWSSecretKey string
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal:
		if cfg.LocalPath == "" {
			cfg.LocalPath = "./uploads"
		}
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET environment variable is required for S3 storage")
		}
		if cfg.S3Region == "" {
			cfg.S3Region = "us-east-1"
		}
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// cleanPath rejects paths that are empty, absolute or contain parent references
func cleanPath(storagePath string) (string, error) {
	if storagePath == "" || strings.HasPrefix(storagePath, "/") || strings.Contains(storagePath, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, storagePath)
	}
	cleaned := filepath.ToSlash(filepath.Clean(storagePath))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, storagePath)
	}
	return cleaned, nil
}

// failure wraps err as a storage failure for op
func failure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageFailure, op, err)
}
