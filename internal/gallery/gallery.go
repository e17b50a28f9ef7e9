// Package gallery enumerates the photos this app has exported.
package gallery

import (
	"context"

	"github.com/ghostpin/ghostpin/internal/mediastore"

	"github.com/rs/zerolog/log"
)

// AlbumName is the fixed media-store album holding every exported asset.
const AlbumName = "GhostPin"

// Index is a read-mostly view over the app's album. Photos and saved
// locations are independent: deleting one never affects the other.
type Index struct {
	store mediastore.Store
}

// NewIndex builds the gallery index over a media store.
func NewIndex(store mediastore.Store) *Index {
	return &Index{store: store}
}

// ListAppPhotos returns the album contents newest-first. An album that does
// not exist yet yields an empty list.
func (i *Index) ListAppPhotos(ctx context.Context) ([]mediastore.Asset, error) {
	assets, err := i.store.ListAssets(ctx, AlbumName)
	if err != nil {
		return nil, err
	}

	if len(assets) == 0 {
		log.Debug().Str("album", AlbumName).Msg("Album empty or not created yet")
	}

	return assets, nil
}

// DeleteAsset removes one exported photo and reports whether deletion
// happened.
func (i *Index) DeleteAsset(ctx context.Context, id string) (bool, error) {
	ok, err := i.store.DeleteAsset(ctx, AlbumName, id)
	if err != nil {
		return false, err
	}

	log.Debug().Str("id", id).Bool("deleted", ok).Msg("Asset delete requested")

	return ok, nil
}
