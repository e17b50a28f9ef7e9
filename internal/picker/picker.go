// Package picker presents the saved-location collection: search, selection
// and gated deletion.
package picker

import (
	"context"
	"strings"

	"github.com/ghostpin/ghostpin/internal/location"
	"github.com/ghostpin/ghostpin/internal/repository"

	"github.com/rs/zerolog/log"
)

// ConfirmFunc is the yes/no gate in front of destructive actions.
type ConfirmFunc func(prompt string) bool

// Picker commits selections into the repository and guards deletions behind
// a confirmation gate. onSelect, when set, is signalled after a committed
// selection (the caller typically dismisses the picker then).
type Picker struct {
	repo     *repository.Repository
	confirm  ConfirmFunc
	onSelect func(location.Location)
}

// New builds a picker. confirm may be nil, in which case deletions proceed
// unguarded; onSelect may be nil.
func New(repo *repository.Repository, confirm ConfirmFunc, onSelect func(location.Location)) *Picker {
	return &Picker{repo: repo, confirm: confirm, onSelect: onSelect}
}

// Filter returns the locations matching query, order preserved. Matching is
// a case-insensitive substring test against the address, or a plain
// substring test against the decimal form of either coordinate. An empty
// query returns the input unchanged.
func Filter(locs []location.Location, query string) []location.Location {
	if query == "" {
		return locs
	}

	lower := strings.ToLower(query)

	out := make([]location.Location, 0, len(locs))
	for _, loc := range locs {
		if strings.Contains(strings.ToLower(loc.Address), lower) ||
			strings.Contains(location.FormatCoordinate(loc.Latitude), query) ||
			strings.Contains(location.FormatCoordinate(loc.Longitude), query) {
			out = append(out, loc)
		}
	}

	return out
}

// Locations lists the repository contents filtered by query, newest first.
func (p *Picker) Locations(query string) []location.Location {
	return Filter(p.repo.Locations(), query)
}

// Select commits the location as the current selection, replacing any prior
// one, then signals the caller. Selection is terminal: at most one location
// is selected at a time.
func (p *Picker) Select(ctx context.Context, loc location.Location) error {
	if err := p.repo.SetSelectedLocation(ctx, &loc); err != nil {
		return err
	}

	log.Debug().Str("id", loc.ID).Str("address", loc.Address).Msg("Location selected")

	if p.onSelect != nil {
		p.onSelect(loc)
	}

	return nil
}

// Deselect clears the current selection.
func (p *Picker) Deselect(ctx context.Context) error {
	return p.repo.SetSelectedLocation(ctx, nil)
}

// Delete removes the location after the confirmation gate approves.
// Cancellation leaves state unchanged.
func (p *Picker) Delete(ctx context.Context, id string) error {
	if p.confirm != nil && !p.confirm("Are you sure you want to delete this location?") {
		log.Debug().Str("id", id).Msg("Deletion cancelled")
		return nil
	}

	return p.repo.RemoveLocation(ctx, id)
}
