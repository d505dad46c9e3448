package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"simregistry-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
)

func newTestPhotoStore(t *testing.T, opts ...PhotoStoreOption) (*PhotoStore, *LocalStorage) {
	t.Helper()
	backend, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewPhotoStore(backend, opts...), backend
}

func upload(name, contentType string, data []byte) models.PhotoUpload {
	return models.PhotoUpload{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	}
}

func TestPhotoStoreStore(t *testing.T) {
	ctx := context.Background()
	fixed := time.UnixMilli(1700000000123)
	id := uuid.MustParse("0b7d3c8e-1f2a-4b5c-9d6e-7f8091a2b3c4")

	store, backend := newTestPhotoStore(t, WithClock(func() time.Time { return fixed }))
	store.newID = func() uuid.UUID { return id }

	ref, err := store.Store(ctx, upload("Pas Foto.PNG", "image/png", pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1700000000123-0b7d3c8e-1f2a-4b5c-9d6e-7f8091a2b3c4.png", ref)

	name, err := PhotoName(ref)
	require.NoError(t, err)
	ok, err := backend.Exists(ctx, name)
	require.NoError(t, err)
	assert.True(t, ok)

	r, contentType, err := store.Open(ctx, name)
	require.NoError(t, err)
	defer r.Close()
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, body)
	assert.Equal(t, "image/png", contentType)
}

func TestPhotoStoreGeneratesUniqueNames(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestPhotoStore(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		ref, err := store.Store(ctx, upload("x.jpg", "image/jpeg", jpegHeader))
		require.NoError(t, err)
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}

func TestPhotoStoreUsesDetectedExtensionForUnknownOriginal(t *testing.T) {
	store, _ := newTestPhotoStore(t)

	ref, err := store.Store(context.Background(), upload("photo.php", "", jpegHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".jpg"), ref)
}

func TestPhotoStoreRejections(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestPhotoStore(t, WithMaxPhotoBytes(64))

	t.Run("declared type outside allow-list", func(t *testing.T) {
		_, err := store.Store(ctx, upload("doc.pdf", "application/pdf", pngHeader))
		assert.ErrorIs(t, err, ErrUnsupportedMediaType)
	})

	t.Run("content is not an image", func(t *testing.T) {
		_, err := store.Store(ctx, upload("fake.png", "image/png", []byte("%PDF-1.4 not an image")))
		assert.ErrorIs(t, err, ErrUnsupportedMediaType)
	})

	t.Run("declared size over limit", func(t *testing.T) {
		_, err := store.Store(ctx, upload("big.png", "image/png", bytes.Repeat([]byte{0}, 65)))
		assert.ErrorIs(t, err, ErrPayloadTooLarge)
	})

	t.Run("unknown size over limit", func(t *testing.T) {
		data := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 64)...)
		u := upload("big.png", "image/png", data)
		u.Size = -1
		_, err := store.Store(ctx, u)
		assert.ErrorIs(t, err, ErrPayloadTooLarge)
	})

	t.Run("jpg alias accepted", func(t *testing.T) {
		_, err := store.Store(ctx, upload("a.jpg", "image/jpg", jpegHeader))
		assert.NoError(t, err)
	})
}

func TestPhotoStoreDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestPhotoStore(t)

	ref, err := store.Store(ctx, upload("a.png", "image/png", pngHeader))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, ref))
	ok, err := store.Exists(ctx, ref)
	require.NoError(t, err)
	assert.False(t, ok)

	// second delete is a no-op
	assert.NoError(t, store.Delete(ctx, ref))
}

func TestPhotoName(t *testing.T) {
	name, err := PhotoName("/uploads/123-abc.png")
	require.NoError(t, err)
	assert.Equal(t, "123-abc.png", name)

	for _, ref := range []string{"", "/uploads/", "uploads/a.png", "/static/a.png", "/uploads/../x", "/uploads/a/b.png"} {
		_, err := PhotoName(ref)
		assert.ErrorIs(t, err, ErrInvalidReference, ref)
	}
}
