package photos

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	key := "photos/properties/a-b/property-exterior/1-front.jpg"
	require.NoError(t, store.Put(ctx, key, []byte("jpeg"), "image/jpeg"))

	data, err := os.ReadFile(filepath.Join(store.BaseDir(), filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)

	names, err := store.List(ctx, "photos/properties/a-b/property-exterior")
	require.NoError(t, err)
	assert.Equal(t, []string{"1-front.jpg"}, names)

	dirs, err := store.ListDirs(ctx, "photos/properties/a-b")
	require.NoError(t, err)
	assert.Equal(t, []string{"property-exterior"}, dirs)

	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, key))
	assert.ErrorIs(t, store.Delete(ctx, key), ErrNotFound)

	// The directory stays behind after its last photo is deleted.
	dirs, err = store.ListDirs(ctx, "photos/properties/a-b")
	require.NoError(t, err)
	assert.Equal(t, []string{"property-exterior"}, dirs)
}

func TestFilesystemStorePutLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "photos/properties/x/1-a.jpg", []byte("one"), "image/jpeg"))
	require.NoError(t, store.Put(ctx, "photos/properties/x/1-a.jpg", []byte("two"), "image/jpeg"))

	entries, err := os.ReadDir(filepath.Join(store.BaseDir(), "photos", "properties", "x"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(store.BaseDir(), "photos", "properties", "x", "1-a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestFilesystemStoreMissingDirIsEmpty(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	names, err := store.List(context.Background(), "photos/properties/nowhere")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestFilesystemStoreRejectsEscapes(t *testing.T) {
	ctx := context.Background()
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	assert.ErrorIs(t, store.Put(ctx, "../outside.jpg", []byte("x"), "image/jpeg"), ErrForbidden)
	assert.ErrorIs(t, store.Delete(ctx, "../../etc/passwd"), ErrForbidden)
	_, err = store.RemoveAll(ctx, "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestFilesystemStoreDeleteRefusesSymlinkOutside(t *testing.T) {
	ctx := context.Background()
	outside := filepath.Join(t.TempDir(), "secret.jpg")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))

	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)
	dir := filepath.Join(store.BaseDir(), "photos", "properties", "a-b", "property-exterior")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.Symlink(outside, filepath.Join(dir, "1-link.jpg")))

	err = store.Delete(ctx, "photos/properties/a-b/property-exterior/1-link.jpg")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

func TestFilesystemStoreDeleteDirectoryIsNotFound(t *testing.T) {
	ctx := context.Background()
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(store.BaseDir(), "photos", "properties", "a-b"), 0o755))

	assert.ErrorIs(t, store.Delete(ctx, "photos/properties/a-b"), ErrNotFound)
}

func TestFilesystemStoreRemoveAll(t *testing.T) {
	ctx := context.Background()
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "photos/properties/gone/property-exterior/1-a.jpg", []byte("a"), "image/jpeg"))
	require.NoError(t, store.Put(ctx, "photos/properties/gone/unit-1/2-b.jpg", []byte("b"), "image/jpeg"))

	n, err := store.RemoveAll(ctx, "photos/properties/gone")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	dirs, err := store.ListDirs(ctx, "photos/properties")
	require.NoError(t, err)
	assert.Empty(t, dirs)
}

func TestFilesystemStoreMove(t *testing.T) {
	ctx := context.Background()
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "photos/properties/old/property-exterior/1-a.jpg", []byte("a"), "image/jpeg"))
	require.NoError(t, store.Put(ctx, "photos/properties/old/unit-1/2-b.jpg", []byte("b"), "image/jpeg"))

	n, err := store.Move(ctx, "photos/properties/old", "photos/properties/new")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	dirs, err := store.ListDirs(ctx, "photos/properties")
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, dirs)
	exists, err := store.Exists(ctx, "photos/properties/new/unit-1/2-b.jpg")
	require.NoError(t, err)
	assert.True(t, exists)

	// Merging into an existing directory
	require.NoError(t, store.Put(ctx, "photos/properties/other/property-exterior/3-c.jpg", []byte("c"), "image/jpeg"))
	n, err = store.Move(ctx, "photos/properties/other", "photos/properties/new")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	names, err := store.List(ctx, "photos/properties/new/property-exterior")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1-a.jpg", "3-c.jpg"}, names)

	n, err = store.Move(ctx, "photos/properties/missing", "photos/properties/x")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = store.Move(ctx, "photos/properties/new", "../escape")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = store.Move(ctx, "photos/properties/new", "photos/properties/new/inner")
	assert.ErrorIs(t, err, ErrValidation)
}
