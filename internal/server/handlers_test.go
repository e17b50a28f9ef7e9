package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghostpin/ghostpin/internal/gallery"
	"github.com/ghostpin/ghostpin/internal/mediastore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) (*ServerContext, *mediastore.FileStore) {
	t.Helper()

	media := mediastore.NewFileStore(t.TempDir())
	sc := NewServerContext(context.Background(), gallery.NewIndex(media), media)

	return sc, media
}

func saveAsset(t *testing.T, media *mediastore.FileStore, name string) mediastore.Asset {
	t.Helper()

	asset, err := media.SaveAsset(context.Background(), gallery.AlbumName, name, []byte("jpeg-bytes"))
	require.NoError(t, err)

	return asset
}

func TestHandlePhotosList(t *testing.T) {
	sc, media := newTestContext(t)

	rec := httptest.NewRecorder()
	sc.HandlePhotosList(rec, httptest.NewRequest(http.MethodGet, "/api/photos", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var assets []mediastore.Asset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assets))
	assert.Empty(t, assets)

	saved := saveAsset(t, media, "ghostpin-1.jpg")

	rec = httptest.NewRecorder()
	sc.HandlePhotosList(rec, httptest.NewRequest(http.MethodGet, "/api/photos", nil))

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assets))
	require.Len(t, assets, 1)
	assert.Equal(t, saved.ID, assets[0].ID)
	assert.Equal(t, gallery.AlbumName, assets[0].Album)
}

func TestHandlePhotoGet(t *testing.T) {
	sc, media := newTestContext(t)
	saved := saveAsset(t, media, "ghostpin-1.jpg")

	rec := httptest.NewRecorder()
	sc.HandlePhoto(rec, httptest.NewRequest(http.MethodGet, "/photos/"+saved.ID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg-bytes", rec.Body.String())

	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/photos/"+saved.ID, nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	sc.HandlePhoto(rec, req)

	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestHandlePhotoNotFound(t *testing.T) {
	sc, _ := newTestContext(t)

	for _, path := range []string{"/photos/", "/photos/missing.jpg", "/photos/a/b"} {
		rec := httptest.NewRecorder()
		sc.HandlePhoto(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestHandlePhotoDelete(t *testing.T) {
	sc, media := newTestContext(t)
	saved := saveAsset(t, media, "ghostpin-1.jpg")

	rec := httptest.NewRecorder()
	sc.HandlePhoto(rec, httptest.NewRequest(http.MethodDelete, "/photos/"+saved.ID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	sc.HandlePhoto(rec, httptest.NewRequest(http.MethodDelete, "/photos/"+saved.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assets, err := media.ListAssets(context.Background(), gallery.AlbumName)
	require.NoError(t, err)
	assert.Empty(t, assets)
}

func TestHandleIndex(t *testing.T) {
	sc, _ := newTestContext(t)

	rec := httptest.NewRecorder()
	sc.HandleIndex(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<html")

	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	sc.HandleIndex(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = httptest.NewRecorder()
	sc.HandleIndex(rec, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
