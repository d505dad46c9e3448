package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStorage fails every call and counts how often it was reached
type flakyStorage struct {
	calls int
}

func (f *flakyStorage) Upload(ctx context.Context, storagePath string, contentType string, data io.Reader) error {
	f.calls++
	return failure("upload", errors.New("disk on fire"))
}

func (f *flakyStorage) Download(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	f.calls++
	return nil, ErrObjectNotFound
}

func (f *flakyStorage) Exists(ctx context.Context, storagePath string) (bool, error) {
	f.calls++
	return false, failure("stat", errors.New("disk on fire"))
}

func (f *flakyStorage) Delete(ctx context.Context, storagePath string) error {
	f.calls++
	return failure("delete", errors.New("disk on fire"))
}

func TestBreakerStorageOpensAfterConsecutiveFailures(t *testing.T) {
	ctx := context.Background()
	next := &flakyStorage{}
	settings := DefaultBreakerSettings("photos")
	settings.FailureThreshold = 3
	settings.Timeout = time.Hour
	b := NewBreakerStorage(next, settings, nil)

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, b.Delete(ctx, "a.png"), ErrStorageFailure)
	}
	require.Equal(t, 3, next.calls)

	err := b.Delete(ctx, "a.png")
	require.ErrorIs(t, err, ErrStorageFailure)
	assert.Equal(t, 3, next.calls, "open breaker must not reach the backend")
}

func TestBreakerStorageIgnoresNotFound(t *testing.T) {
	ctx := context.Background()
	next := &flakyStorage{}
	settings := DefaultBreakerSettings("photos")
	settings.FailureThreshold = 2
	b := NewBreakerStorage(next, settings, nil)

	for i := 0; i < 5; i++ {
		_, err := b.Download(ctx, "missing.png")
		require.ErrorIs(t, err, ErrObjectNotFound)
	}
	assert.Equal(t, 5, next.calls)
}

func TestBreakerStoragePassesThrough(t *testing.T) {
	ctx := context.Background()
	local, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	b := NewBreakerStorage(local, DefaultBreakerSettings("photos"), nil)

	store := NewPhotoStore(b)
	ref, err := store.Store(ctx, upload("a.png", "image/png", pngHeader))
	require.NoError(t, err)

	ok, err := store.Exists(ctx, ref)
	require.NoError(t, err)
	assert.True(t, ok)
}
