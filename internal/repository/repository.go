// Package repository owns the persisted collection of saved locations and the
// single "selected location" pointer staged for the next stamped photo.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/ghostpin/ghostpin/internal/location"

	"github.com/rs/zerolog/log"
)

// state is the persisted JSON layout. Locations are ordered newest-first and
// the order is significant. The selected location is embedded in full so the
// record round-trips without lookups.
type state struct {
	Locations        []location.Location `json:"locations"`
	SelectedLocation *location.Location  `json:"selectedLocation"`
}

// Repository is the only owner of saved-location state. Every mutation is
// persisted through the BlobStore before the call returns, so a read issued
// after a mutation always observes it.
type Repository struct {
	mu         sync.Mutex
	store      BlobStore
	locations  []location.Location
	selectedID string
	subs       map[int]func()
	nextSub    int
}

// Open loads persisted state from the store. A store with no record yet
// yields an empty repository.
func Open(ctx context.Context, store BlobStore) (*Repository, error) {
	r := &Repository{
		store: store,
		subs:  make(map[int]func()),
	}

	data, err := store.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNoState) {
			log.Debug().Str("key", StateKey).Msg("No persisted state, starting empty")
			return r, nil
		}
		return nil, err
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}

	r.locations = st.Locations
	if st.SelectedLocation != nil {
		r.selectedID = st.SelectedLocation.ID
	}

	log.Debug().
		Int("locations", len(r.locations)).
		Bool("has_selection", r.selectedID != "").
		Msg("Repository state loaded")

	return r, nil
}

// AddLocation validates the candidate, prepends the new location (consumers
// display most-recent-first) and persists. Duplicate coordinates are allowed.
func (r *Repository) AddLocation(ctx context.Context, c location.Candidate) (location.Location, error) {
	loc, err := location.New(c)
	if err != nil {
		return location.Location{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.locations = append([]location.Location{loc}, r.locations...)
	if err := r.persist(ctx); err != nil {
		r.locations = r.locations[1:]
		return location.Location{}, err
	}

	r.notify()
	return loc, nil
}

// RemoveLocation removes the matching entry and clears the selection if it
// pointed at it. Unknown ids are a no-op, not an error.
func (r *Repository) RemoveLocation(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, loc := range r.locations {
		if loc.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	removed := r.locations[idx]
	prevSelected := r.selectedID

	r.locations = append(r.locations[:idx:idx], r.locations[idx+1:]...)
	if r.selectedID == id {
		r.selectedID = ""
	}

	if err := r.persist(ctx); err != nil {
		r.locations = append(r.locations[:idx:idx], append([]location.Location{removed}, r.locations[idx:]...)...)
		r.selectedID = prevSelected
		return err
	}

	r.notify()
	return nil
}

// SetSelectedLocation stages the location for the next stamped photo, or
// clears the selection when nil. Membership is the caller's responsibility;
// a non-member is flagged but still set.
func (r *Repository) SetSelectedLocation(ctx context.Context, loc *location.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.selectedID

	if loc == nil {
		r.selectedID = ""
	} else {
		if r.lookup(loc.ID) == nil {
			log.Warn().Str("id", loc.ID).Msg("Selecting a location not present in the repository")
		}
		r.selectedID = loc.ID
	}

	if err := r.persist(ctx); err != nil {
		r.selectedID = prev
		return err
	}

	r.notify()
	return nil
}

// Locations returns the saved locations, newest first.
func (r *Repository) Locations() []location.Location {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]location.Location, len(r.locations))
	copy(out, r.locations)
	return out
}

// SelectedLocation resolves the selection pointer against the current
// collection. A dangling or empty pointer yields nil.
func (r *Repository) SelectedLocation() *location.Location {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lookup(r.selectedID)
}

// Subscribe registers fn to run after every committed mutation. fn runs
// synchronously with the repository locked and must not call back into it.
// The returned function cancels the subscription.
func (r *Repository) Subscribe(fn func()) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}
}

// lookup must be called with the mutex held.
func (r *Repository) lookup(id string) *location.Location {
	if id == "" {
		return nil
	}
	for i := range r.locations {
		if r.locations[i].ID == id {
			loc := r.locations[i]
			return &loc
		}
	}

	return nil
}

// persist writes the full state through the blob store. Must be called with
// the mutex held; the mutation is only committed once this succeeds.
func (r *Repository) persist(ctx context.Context) error {
	st := state{
		Locations:        r.locations,
		SelectedLocation: r.lookup(r.selectedID),
	}
	if st.Locations == nil {
		st.Locations = []location.Location{}
	}

	data, err := json.Marshal(st)
	if err != nil {
		return err
	}

	return r.store.Save(ctx, data)
}

// notify must be called with the mutex held.
func (r *Repository) notify() {
	for _, fn := range r.subs {
		fn()
	}
}
