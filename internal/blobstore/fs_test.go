package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FSStore {
	t.Helper()
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func expectedName(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:]) + Ext
}

func TestFSStore_PutAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	data := []byte("jpeg bytes")
	name, err := s.Put(ctx, bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, expectedName(data), name)

	reader, err := s.Get(ctx, name)
	require.NoError(t, err)
	defer reader.Close()

	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestFSStore_Put_Deduplicates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	data := []byte("same content")
	name1, err := s.Put(ctx, bytes.NewReader(data))
	require.NoError(t, err)
	name2, err := s.Put(ctx, bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, name1, name2)

	entries, err := os.ReadDir(s.root)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "identical content must create at most one file")
}

func TestFSStore_Put_DistinctContent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	name1, err := s.Put(ctx, bytes.NewReader([]byte("one")))
	require.NoError(t, err)
	name2, err := s.Put(ctx, bytes.NewReader([]byte("two")))
	require.NoError(t, err)
	assert.NotEqual(t, name1, name2)
}

func TestFSStore_Put_Empty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Put(ctx, bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrInvalidName)

	entries, err := os.ReadDir(s.root)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed put must not leave temp files behind")
}

func TestFSStore_Put_NoTempLeftover(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	data := []byte("content")
	_, err := s.Put(ctx, bytes.NewReader(data))
	require.NoError(t, err)
	_, err = s.Put(ctx, bytes.NewReader(data))
	require.NoError(t, err)

	entries, err := os.ReadDir(s.root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, expectedName(data), entries[0].Name())
}

func TestFSStore_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Get(ctx, "nonexistent.jpg")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestFSStore_Get_InvalidName(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, name := range []string{
		"",
		"noextension",
		"photo.png",
		"../escape.jpg",
		"sub/dir.jpg",
		"..jpg",
	} {
		_, err := s.Get(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestFSStore_Has(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	has, err := s.Has(ctx, "nonexistent.jpg")
	require.NoError(t, err)
	assert.False(t, has)

	name, err := s.Put(ctx, bytes.NewReader([]byte("content")))
	require.NoError(t, err)

	has, err = s.Has(ctx, name)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestFSStore_EnsureDefault(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	placeholder := []byte("placeholder jpeg")
	require.NoError(t, s.EnsureDefault(placeholder))

	reader, err := s.Get(ctx, DefaultName)
	require.NoError(t, err)
	defer reader.Close()
	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, placeholder, got)

	// Second call must not overwrite an existing default.
	require.NoError(t, s.EnsureDefault([]byte("other")))
	data, err := os.ReadFile(filepath.Join(s.root, DefaultName))
	require.NoError(t, err)
	assert.Equal(t, placeholder, data)
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("default.jpg"))
	assert.NoError(t, ValidateName(expectedName([]byte("x"))))
	assert.Error(t, ValidateName(".jpg"))
	assert.Error(t, ValidateName("a.jpeg"))
	assert.Error(t, ValidateName("a.jpg/b.jpg"))
}
