package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/kilupskalvis/catalogd/internal/blobstore"
	"github.com/kilupskalvis/catalogd/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultImage = []byte("default placeholder jpeg")

func newTestService(t *testing.T) *Catalog {
	t.Helper()
	dir := t.TempDir()

	blobs, err := blobstore.NewFSStore(filepath.Join(dir, "images"))
	require.NoError(t, err)
	require.NoError(t, blobs.EnsureDefault(defaultImage))

	repo := catalog.NewDocumentRepository(
		filepath.Join(dir, "items.json"),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return New(repo, blobs, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCatalog_SubmitAndGet(t *testing.T) {
	ctx := context.Background()
	c := newTestService(t)

	image := []byte("jpeg content")
	item, err := c.SubmitItem(ctx, "apple", "fruit", bytes.NewReader(image))
	require.NoError(t, err)
	require.NotZero(t, item.ID)

	got, err := c.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "apple", got.Name)
	assert.Equal(t, "fruit", got.Category)
	assert.Equal(t, item.Image, got.Image)

	// The stored fingerprint must resolve back to the uploaded bytes.
	reader, err := c.FetchImage(ctx, got.Image)
	require.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, image, data)
}

func TestCatalog_SubmitItem_Validation(t *testing.T) {
	ctx := context.Background()
	c := newTestService(t)

	_, err := c.SubmitItem(ctx, "", "fruit", bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, catalog.ErrInvalidArgument)

	_, err = c.SubmitItem(ctx, "   ", "fruit", bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, catalog.ErrInvalidArgument)

	_, err = c.SubmitItem(ctx, "apple", "fruit", nil)
	assert.ErrorIs(t, err, catalog.ErrInvalidArgument)

	_, err = c.SubmitItem(ctx, "apple", "fruit", bytes.NewReader(nil))
	assert.ErrorIs(t, err, catalog.ErrInvalidArgument)

	// No partial side effects from rejected input.
	items, err := c.ListItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCatalog_SubmitItem_DeduplicatesImages(t *testing.T) {
	ctx := context.Background()
	c := newTestService(t)

	image := []byte("shared jpeg")
	a, err := c.SubmitItem(ctx, "first", "", bytes.NewReader(image))
	require.NoError(t, err)
	b, err := c.SubmitItem(ctx, "second", "", bytes.NewReader(image))
	require.NoError(t, err)

	assert.Equal(t, a.Image, b.Image, "identical bytes must share a fingerprint")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCatalog_FetchImage_DefaultFallback(t *testing.T) {
	ctx := context.Background()
	c := newTestService(t)

	reader, err := c.FetchImage(ctx, "0000000000000000000000000000000000000000000000000000000000000000.jpg")
	require.NoError(t, err, "missing blob must fall back, not error")
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, defaultImage, data)
}

func TestCatalog_FetchImage_InvalidName(t *testing.T) {
	ctx := context.Background()
	c := newTestService(t)

	for _, name := range []string{"", "notjpg.png", "../../etc/passwd", "a/b.jpg"} {
		_, err := c.FetchImage(ctx, name)
		assert.ErrorIs(t, err, catalog.ErrInvalidArgument, "name %q", name)
	}
}

func TestCatalog_ListAndSearchPassthrough(t *testing.T) {
	ctx := context.Background()
	c := newTestService(t)

	_, err := c.SubmitItem(ctx, "green apple", "fruit", bytes.NewReader([]byte("a")))
	require.NoError(t, err)
	_, err = c.SubmitItem(ctx, "carrot", "veg", bytes.NewReader([]byte("b")))
	require.NoError(t, err)

	items, err := c.ListItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	found, err := c.Search(ctx, "apple")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "green apple", found[0].Name)

	_, err = c.Search(ctx, "")
	assert.ErrorIs(t, err, catalog.ErrInvalidArgument)

	_, err = c.GetItem(ctx, 99)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
