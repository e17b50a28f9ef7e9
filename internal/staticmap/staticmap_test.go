package staticmap

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL(t *testing.T) {
	c := NewClient(nil, "https://maps.example.com", "test-key")

	got := c.URL(40.7128, -74.006, DefaultZoom, 200, 200)
	want := "https://maps.example.com/v2/staticmap?key=test-key" +
		"&center=40.7128,-74.006&zoom=15&size=200x200" +
		"&markers=icon:small-red-cutout|40.7128,-74.006"

	assert.Equal(t, want, got)
}

func TestThumbnailFetches(t *testing.T) {
	tile := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			tile.SetRGBA(x, y, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xFF})
		}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/staticmap", r.URL.Path)

		w.Header().Set("Content-Type", "image/png")
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, tile))
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "k")

	img := c.Thumbnail(context.Background(), 10, 20, DefaultZoom, 16, 16)
	require.NotNil(t, img)

	assert.Equal(t, 16, img.Bounds().Dx())
	r, g, b, _ := img.At(8, 8).RGBA()
	assert.Equal(t, uint32(0x10), r>>8)
	assert.Equal(t, uint32(0x20), g>>8)
	assert.Equal(t, uint32(0x30), b>>8)
}

func TestThumbnailDegradesToPlaceholder(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"not found", func(w http.ResponseWriter, _ *http.Request) {
			http.NotFound(w, nil)
		}},
		{"garbage body", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not an image"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.Client(), srv.URL, "k")

			img := c.Thumbnail(context.Background(), 10, 20, DefaultZoom, 32, 24)
			require.NotNil(t, img)
			assert.Equal(t, 32, img.Bounds().Dx())
			assert.Equal(t, 24, img.Bounds().Dy())
		})
	}
}

func TestThumbnailTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := NewClient(http.DefaultClient, srv.URL, "k")

	img := c.Thumbnail(context.Background(), 10, 20, DefaultZoom, 10, 10)
	require.NotNil(t, img, "a dead map service never blocks composition")
	assert.Equal(t, 10, img.Bounds().Dx())
}

func TestPlaceholder(t *testing.T) {
	img := Placeholder(20, 10)

	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, 10, img.Bounds().Dy())

	r, _, _, a := img.At(10, 5).RGBA()
	assert.Equal(t, uint32(0xE0), r>>8, "interior uses the fill tone")
	assert.Equal(t, uint32(0xFF), a>>8)

	r, _, _, _ = img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xB0), r>>8, "border is darker")
}
