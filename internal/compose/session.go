package compose

import (
	"context"
	"errors"

	"github.com/ghostpin/ghostpin/internal/capture"
	"github.com/ghostpin/ghostpin/internal/mediastore"
	"github.com/ghostpin/ghostpin/internal/repository"

	"github.com/rs/zerolog/log"
)

// ErrSessionClosed is returned when acting on a session after retake.
var ErrSessionClosed = errors.New("session closed")

// Session ties one captured photo to the repository's current selection for
// the preview stage. The selected location is read at save/share time, so
// picking a different location between actions stamps the new one.
type Session struct {
	engine *Engine
	repo   *repository.Repository
	photo  capture.Photo
	closed bool
}

// NewSession starts the preview stage for a photo handed over by the capture
// pipeline.
func NewSession(engine *Engine, repo *repository.Repository, photo capture.Photo) *Session {
	return &Session{engine: engine, repo: repo, photo: photo}
}

// Photo returns the photo under review.
func (s *Session) Photo() capture.Photo {
	return s.photo
}

// Save exports the stamped photo into the app album.
func (s *Session) Save(ctx context.Context) (mediastore.Asset, error) {
	if s.closed {
		return mediastore.Asset{}, ErrSessionClosed
	}

	return s.engine.Export(ctx, s.photo, s.repo.SelectedLocation())
}

// Share hands the stamped photo to the share collaborator.
func (s *Session) Share(ctx context.Context) error {
	if s.closed {
		return ErrSessionClosed
	}

	return s.engine.Share(ctx, s.photo, s.repo.SelectedLocation())
}

// Retake abandons the photo and returns control to the live camera. The
// selected location is kept: only an explicit deselect or a picker action
// changes it.
func (s *Session) Retake() {
	s.closed = true
	log.Debug().Str("photo", s.photo.Path).Msg("Photo retaken, selection kept")
}
