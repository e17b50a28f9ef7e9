// Package location defines the saved-location model and its creation rules.
package location

import (
	"errors"
	"fmt"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// ErrInvalidCoordinates is returned when a candidate has coordinates outside
// the WGS84 domain, or is the (0, 0) "no fix" sentinel.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Location is a user-saved geographic point. Never mutated after creation;
// the address is resolved once, when the location is added.
type Location struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// Candidate holds raw input for a new Location, before validation.
type Candidate struct {
	Latitude  float64
	Longitude float64
	Address   string
}

// Validate checks coordinate ranges and rejects the (0, 0) sentinel.
func (c Candidate) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&c.Longitude, validation.Min(-180.0), validation.Max(180.0)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}

	if c.Latitude == 0 && c.Longitude == 0 {
		return fmt.Errorf("%w: (0, 0) is reserved for missing fixes", ErrInvalidCoordinates)
	}

	return nil
}

// New validates the candidate and mints a Location with a fresh id.
func New(c Candidate) (Location, error) {
	if err := c.Validate(); err != nil {
		return Location{}, err
	}

	return Location{
		ID:        uuid.NewString(),
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		Address:   c.Address,
	}, nil
}

// CoordinateString renders the pair with five decimal places, the precision
// shown on stamped cards ("40.71280, -74.00600").
func (l Location) CoordinateString() string {
	return fmt.Sprintf("%.5f, %.5f", l.Latitude, l.Longitude)
}

// FormatCoordinate returns the shortest exact decimal form of a coordinate,
// the representation searched against by the picker filter.
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
