// Package geocode wraps reverse-geocoding lookups against a LocationIQ
// compatible endpoint and abstracts the device geolocation provider.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ghostpin/ghostpin/internal/location"

	"github.com/rs/zerolog/log"
)

// ErrGeocodingFailed is returned on transport failure or an empty result.
// Callers must treat it as non-fatal: a location is still usable without an
// address.
var ErrGeocodingFailed = errors.New("geocoding failed")

// Geocoder resolves coordinates to a human-readable address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// Client calls the remote reverse-geocoding service. One attempt, no retry;
// failures propagate to the caller, which degrades gracefully.
type Client struct {
	http    *http.Client
	baseURL string
	key     string
}

// NewClient builds a geocoding client on top of a shared http.Client.
func NewClient(httpClient *http.Client, baseURL, key string) *Client {
	return &Client{http: httpClient, baseURL: baseURL, key: key}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// ReverseGeocode returns the best formatted address for the coordinates.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{}
	q.Set("key", c.key)
	q.Set("lat", location.FormatCoordinate(lat))
	q.Set("lon", location.FormatCoordinate(lng))
	q.Set("format", "json")

	reqURL := c.baseURL + "/v1/reverse?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeocodingFailed, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeocodingFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("%w: status %d", ErrGeocodingFailed, resp.StatusCode)
	}

	var rr reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeocodingFailed, err)
	}

	if rr.DisplayName == "" {
		return "", fmt.Errorf("%w: empty result", ErrGeocodingFailed)
	}

	log.Debug().
		Float64("lat", lat).
		Float64("lng", lng).
		Str("address", rr.DisplayName).
		Msg("Reverse geocode resolved")

	return rr.DisplayName, nil
}

// Position is a device GPS fix.
type Position struct {
	Latitude  float64
	Longitude float64
}

// Positioner abstracts the device geolocation provider.
type Positioner interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

// StaticPositioner reports a fixed position. It stands in for device GPS in
// the CLI and in tests.
type StaticPositioner struct {
	Position Position
}

// CurrentPosition returns the configured fix.
func (s StaticPositioner) CurrentPosition(_ context.Context) (Position, error) {
	return s.Position, nil
}
