// Package mediastore stands in for the device media library: albums of
// finalized image assets, enumerated newest-first.
package mediastore

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Asset is one finalized image stored in an album.
type Asset struct {
	ID        string    `json:"id"`
	URI       string    `json:"uri"`
	Album     string    `json:"album"`
	CreatedAt time.Time `json:"createdAt"`
	Size      int64     `json:"size"`
}

// Store is the media-library contract used by the exporter and the gallery.
type Store interface {
	// SaveAsset writes data as a new asset in album, creating the album on
	// first use. The write is atomic: no partial asset is ever visible.
	SaveAsset(ctx context.Context, album, name string, data []byte) (Asset, error)

	// ListAssets enumerates the album newest-first. A missing album yields an
	// empty list, not an error.
	ListAssets(ctx context.Context, album string) ([]Asset, error)

	// DeleteAsset removes the asset and reports whether anything was removed.
	DeleteAsset(ctx context.Context, album, id string) (bool, error)
}

// FileStore keeps each album as a directory under root and each asset as one
// file inside it.
type FileStore struct {
	root string
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

// AssetPath resolves the on-disk path of an asset. The id is reduced to its
// base name to keep lookups inside the album directory.
func (s *FileStore) AssetPath(album, id string) string {
	return filepath.Join(s.root, album, filepath.Base(id))
}

// SaveAsset implements Store. Data lands in a temp file first and is renamed
// into place, so readers never observe a partial asset.
func (s *FileStore) SaveAsset(_ context.Context, album, name string, data []byte) (Asset, error) {
	dir := filepath.Join(s.root, album)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Asset{}, err
	}

	tmp, err := os.CreateTemp(dir, ".pending-*")
	if err != nil {
		return Asset{}, err
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return Asset{}, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return Asset{}, err
	}

	path := filepath.Join(dir, filepath.Base(name))
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return Asset{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return Asset{}, err
	}

	return Asset{
		ID:        filepath.Base(name),
		URI:       path,
		Album:     album,
		CreatedAt: info.ModTime(),
		Size:      info.Size(),
	}, nil
}

// ListAssets implements Store.
func (s *FileStore) ListAssets(_ context.Context, album string) ([]Asset, error) {
	dir := filepath.Join(s.root, album)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Asset{}, nil
		}
		return nil, err
	}

	assets := make([]Asset, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		assets = append(assets, Asset{
			ID:        entry.Name(),
			URI:       filepath.Join(dir, entry.Name()),
			Album:     album,
			CreatedAt: info.ModTime(),
			Size:      info.Size(),
		})
	}

	// Newest first; id breaks mtime ties for a stable order.
	sort.Slice(assets, func(i, j int) bool {
		if !assets[i].CreatedAt.Equal(assets[j].CreatedAt) {
			return assets[i].CreatedAt.After(assets[j].CreatedAt)
		}
		return assets[i].ID > assets[j].ID
	})

	return assets, nil
}

// DeleteAsset implements Store.
func (s *FileStore) DeleteAsset(_ context.Context, album, id string) (bool, error) {
	err := os.Remove(s.AssetPath(album, id))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
