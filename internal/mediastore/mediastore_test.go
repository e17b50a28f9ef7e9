package mediastore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAssetCreatesAlbum(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	asset, err := store.SaveAsset(ctx, "GhostPin", "photo-1.jpg", []byte("jpeg-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "photo-1.jpg", asset.ID)
	assert.Equal(t, "GhostPin", asset.Album)
	assert.Equal(t, int64(10), asset.Size)
	assert.FileExists(t, asset.URI)

	data, err := os.ReadFile(asset.URI)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestListAssetsMissingAlbum(t *testing.T) {
	store := NewFileStore(t.TempDir())

	assets, err := store.ListAssets(context.Background(), "GhostPin")
	require.NoError(t, err)
	assert.Empty(t, assets, "a missing album lists as empty, not as an error")
}

func TestListAssetsNewestFirst(t *testing.T) {
	root := t.TempDir()
	store := NewFileStore(root)
	ctx := context.Background()

	names := []string{"a.jpg", "b.jpg", "c.jpg"}
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i, name := range names {
		_, err := store.SaveAsset(ctx, "GhostPin", name, []byte{byte(i)})
		require.NoError(t, err)

		// Pin distinct creation times so ordering does not depend on test speed.
		path := filepath.Join(root, "GhostPin", name)
		stamp := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, stamp, stamp))
	}

	assets, err := store.ListAssets(ctx, "GhostPin")
	require.NoError(t, err)
	require.Len(t, assets, 3)

	assert.Equal(t, "c.jpg", assets[0].ID)
	assert.Equal(t, "b.jpg", assets[1].ID)
	assert.Equal(t, "a.jpg", assets[2].ID)
}

func TestListAssetsSkipsPendingFiles(t *testing.T) {
	root := t.TempDir()
	store := NewFileStore(root)
	ctx := context.Background()

	_, err := store.SaveAsset(ctx, "GhostPin", "photo.jpg", []byte("x"))
	require.NoError(t, err)

	// A crashed writer may leave a temp file behind; it must never surface.
	require.NoError(t, os.WriteFile(filepath.Join(root, "GhostPin", ".pending-123"), []byte("y"), 0644))

	assets, err := store.ListAssets(ctx, "GhostPin")
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "photo.jpg", assets[0].ID)
}

func TestDeleteAsset(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	asset, err := store.SaveAsset(ctx, "GhostPin", "photo.jpg", []byte("x"))
	require.NoError(t, err)

	ok, err := store.DeleteAsset(ctx, "GhostPin", asset.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoFileExists(t, asset.URI)

	ok, err = store.DeleteAsset(ctx, "GhostPin", asset.ID)
	require.NoError(t, err)
	assert.False(t, ok, "deleting twice reports nothing removed")
}

func TestAssetPathStaysInsideAlbum(t *testing.T) {
	store := NewFileStore("/media")

	path := store.AssetPath("GhostPin", "../../etc/passwd")
	assert.Equal(t, filepath.Join("/media", "GhostPin", "passwd"), path)
}

func TestSaveAssetOverwrite(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	_, err := store.SaveAsset(ctx, "GhostPin", "photo.jpg", []byte("old"))
	require.NoError(t, err)

	asset, err := store.SaveAsset(ctx, "GhostPin", "photo.jpg", []byte("new"))
	require.NoError(t, err)

	data, err := os.ReadFile(asset.URI)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	assets, err := store.ListAssets(ctx, "GhostPin")
	require.NoError(t, err)
	assert.Len(t, assets, 1)
}
