// Package staticmap fetches map thumbnails from a remote static-map image
// service. Fetch failures degrade to a generated placeholder tile so a
// missing thumbnail never blocks composition.
package staticmap

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"github.com/ghostpin/ghostpin/internal/location"

	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"
)

// DefaultZoom is the zoom level used for both list entries and the export
// overlay.
const DefaultZoom = 15

// ThumbSize is the pixel edge requested for list-entry thumbnails.
const ThumbSize = 200

// Client requests rendered map images keyed by coordinates.
type Client struct {
	http    *http.Client
	baseURL string
	key     string
}

// NewClient builds a static-map client on top of a shared http.Client.
func NewClient(httpClient *http.Client, baseURL, key string) *Client {
	return &Client{http: httpClient, baseURL: baseURL, key: key}
}

// URL builds the static-map GET URL for the coordinates: centered marker,
// requested zoom and size.
func (c *Client) URL(lat, lng float64, zoom, width, height int) string {
	center := location.FormatCoordinate(lat) + "," + location.FormatCoordinate(lng)

	return fmt.Sprintf(
		"%s/v2/staticmap?key=%s&center=%s&zoom=%d&size=%dx%d&markers=icon:small-red-cutout|%s",
		c.baseURL, c.key, center, zoom, width, height, center,
	)
}

// Thumbnail fetches and decodes the map image. Any failure is logged and
// replaced with a placeholder tile of the requested size.
func (c *Client) Thumbnail(ctx context.Context, lat, lng float64, zoom, width, height int) image.Image {
	reqURL := c.URL(lat, lng, zoom, width, height)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		log.Debug().Err(err).Msg("Bad static-map request, using placeholder")
		return Placeholder(width, height)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("Static-map fetch failed, using placeholder")
		return Placeholder(width, height)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != 200 {
		log.Debug().Int("status", resp.StatusCode).Msg("Static-map fetch failed, using placeholder")
		return Placeholder(width, height)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Debug().Err(err).Msg("Static-map read failed, using placeholder")
		return Placeholder(width, height)
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		log.Debug().Err(err).Msg("Static-map decode failed, using placeholder")
		return Placeholder(width, height)
	}

	return img
}

// Placeholder is the missing-thumbnail tile: a flat light-gray square with a
// darker border.
func Placeholder(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	fill := color.RGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	border := color.RGBA{R: 0xB0, G: 0xB0, B: 0xB0, A: 0xFF}

	draw.Draw(img, img.Bounds(), image.NewUniform(fill), image.Point{}, draw.Src)

	for x := 0; x < width; x++ {
		img.SetRGBA(x, 0, border)
		img.SetRGBA(x, height-1, border)
	}
	for y := 0; y < height; y++ {
		img.SetRGBA(0, y, border)
		img.SetRGBA(width-1, y, border)
	}

	return img
}
