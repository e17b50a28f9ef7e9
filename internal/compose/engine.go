// Package compose flattens a captured photo and an optional location card
// into one exportable image, then saves it to the app album or hands it to
// the share collaborator.
package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"time"

	"github.com/ghostpin/ghostpin/internal/capture"
	"github.com/ghostpin/ghostpin/internal/gallery"
	"github.com/ghostpin/ghostpin/internal/location"
	"github.com/ghostpin/ghostpin/internal/mediastore"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// ErrExportFailed is returned when rendering, saving or sharing fails. No
// partial asset is left behind; the user retries the same action.
var ErrExportFailed = errors.New("export failed")

// Format selects the export encoding.
type Format string

const (
	FormatJPEG Format = "jpg"
	FormatWebP Format = "webp"
)

// MapProvider supplies the map thumbnail for the overlay card. It never
// fails; a missing thumbnail is a placeholder image.
type MapProvider interface {
	Thumbnail(ctx context.Context, lat, lng float64, zoom, width, height int) image.Image
}

// Sharer hands a flattened image to the OS share collaborator. Sharing does
// not write to the album.
type Sharer interface {
	Share(ctx context.Context, name string, data []byte) error
}

// Options tune the export encoding.
type Options struct {
	Format  Format
	Quality int
}

// Engine renders location-stamped exports. Save and Share run the exact same
// render path, so the flattened pixels are identical either way. At most one
// export per captured photo is in flight at a time; concurrent duplicates
// coalesce onto the first call.
type Engine struct {
	maps    MapProvider
	media   mediastore.Store
	sharer  Sharer
	format  Format
	quality int
	now     func() time.Time
	flights singleflight.Group
}

// NewEngine builds the engine. Quality defaults to 90 and format to JPEG.
func NewEngine(maps MapProvider, media mediastore.Store, sharer Sharer, opts Options) *Engine {
	format := opts.Format
	if format != FormatWebP {
		format = FormatJPEG
	}

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 90
	}

	return &Engine{
		maps:    maps,
		media:   media,
		sharer:  sharer,
		format:  format,
		quality: quality,
		now:     time.Now,
	}
}

// Export flattens the photo with the location card (omitted when loc is nil)
// and writes it into the app album, creating the album on first use.
func (e *Engine) Export(ctx context.Context, photo capture.Photo, loc *location.Location) (mediastore.Asset, error) {
	v, err, shared := e.flights.Do("save|"+photo.Path, func() (interface{}, error) {
		data, err := e.render(ctx, photo, loc)
		if err != nil {
			return nil, err
		}

		asset, err := e.media.SaveAsset(ctx, gallery.AlbumName, e.assetName(), data)
		if err != nil {
			return nil, fmt.Errorf("%w: save: %v", ErrExportFailed, err)
		}

		log.Info().
			Str("asset", asset.ID).
			Str("album", asset.Album).
			Int64("bytes", asset.Size).
			Bool("stamped", loc != nil).
			Msg("Photo exported")

		return asset, nil
	})
	if err != nil {
		return mediastore.Asset{}, err
	}

	if shared {
		log.Debug().Str("photo", photo.Path).Msg("Duplicate export coalesced")
	}

	return v.(mediastore.Asset), nil
}

// Share flattens the photo the same way Export does and passes the result to
// the share collaborator. The album is not touched.
func (e *Engine) Share(ctx context.Context, photo capture.Photo, loc *location.Location) error {
	_, err, _ := e.flights.Do("share|"+photo.Path, func() (interface{}, error) {
		data, err := e.render(ctx, photo, loc)
		if err != nil {
			return nil, err
		}

		if err := e.sharer.Share(ctx, e.assetName(), data); err != nil {
			return nil, fmt.Errorf("%w: share: %v", ErrExportFailed, err)
		}

		return nil, nil
	})

	return err
}

// render produces the flattened export: a full-bleed raster of the photo
// with the location card drawn over it when a location is selected.
func (e *Engine) render(ctx context.Context, photo capture.Photo, loc *location.Location) ([]byte, error) {
	src, err := e.loadPhoto(photo.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	flat := flatten(src)

	if loc != nil {
		e.drawCard(ctx, flat, *loc)
	}

	var buf bytes.Buffer
	switch e.format {
	case FormatWebP:
		err = webp.Encode(&buf, flat, &webp.Options{Lossless: false, Quality: float32(e.quality)})
	default:
		err = jpeg.Encode(&buf, flat, &jpeg.Options{Quality: e.quality})
	}
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrExportFailed, err)
	}

	return buf.Bytes(), nil
}

func (e *Engine) loadPhoto(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	log.Debug().Str("format", format).Str("path", path).Msg("Photo decoded")

	return img, nil
}

func (e *Engine) assetName() string {
	return fmt.Sprintf("ghostpin-%d.%s", e.now().UTC().UnixNano(), e.format)
}
