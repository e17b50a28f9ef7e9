package server

import (
	"context"

	"github.com/ghostpin/ghostpin/assets"
	"github.com/ghostpin/ghostpin/internal/gallery"
	"github.com/ghostpin/ghostpin/internal/mediastore"

	"github.com/rs/zerolog/log"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Index     *gallery.Index
	Media     *mediastore.FileStore
	IndexHTML []byte
}

// NewServerContext wires the gallery index and media store into the viewer.
func NewServerContext(ctx context.Context, index *gallery.Index, media *mediastore.FileStore) *ServerContext {
	photos, err := index.ListAppPhotos(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Could not enumerate album at startup")
	} else {
		log.Info().Int("photos", len(photos)).Msg("Gallery viewer initialized")
	}

	return &ServerContext{
		Index:     index,
		Media:     media,
		IndexHTML: assets.Index,
	}
}
