package picker

import (
	"context"
	"testing"

	"github.com/ghostpin/ghostpin/internal/location"
	"github.com/ghostpin/ghostpin/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLocations() []location.Location {
	return []location.Location{
		{ID: "1", Latitude: 40.7128, Longitude: -74.006, Address: "New York, NY, USA"},
		{ID: "2", Latitude: 51.5074, Longitude: -0.1278, Address: "London, UK"},
		{ID: "3", Latitude: 35.6762, Longitude: 139.6503},
	}
}

func TestFilter(t *testing.T) {
	locs := testLocations()

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"empty query returns all in order", "", []string{"1", "2", "3"}},
		{"address match case-insensitive", "new york", []string{"1"}},
		{"address match different case", "LONDON", []string{"2"}},
		{"latitude substring", "35.67", []string{"3"}},
		{"longitude substring", "-74", []string{"1"}},
		{"shared digit keeps order", "5", []string{"2", "3"}},
		{"no match", "atlantis", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(locs, tt.query)

			ids := make([]string, 0, len(got))
			for _, loc := range got {
				ids = append(ids, loc.ID)
			}

			if tt.wantIDs == nil {
				assert.Empty(t, ids)
			} else {
				assert.Equal(t, tt.wantIDs, ids)
			}
		})
	}
}

func TestFilterNoAddress(t *testing.T) {
	locs := []location.Location{{ID: "1", Latitude: 10, Longitude: 20}}

	assert.Empty(t, Filter(locs, "street"), "address-less locations only match on coordinates")
	assert.Len(t, Filter(locs, "10"), 1)
}

func newRepo(t *testing.T) *repository.Repository {
	t.Helper()

	r, err := repository.Open(context.Background(), &repository.MemoryStore{})
	require.NoError(t, err)

	return r
}

func TestSelectCommitsAndSignals(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	loc, err := repo.AddLocation(ctx, location.Candidate{Latitude: 10, Longitude: 20})
	require.NoError(t, err)

	var signalled *location.Location
	p := New(repo, nil, func(l location.Location) { signalled = &l })

	require.NoError(t, p.Select(ctx, loc))

	selected := repo.SelectedLocation()
	require.NotNil(t, selected)
	assert.Equal(t, loc.ID, selected.ID)

	require.NotNil(t, signalled, "picker signals the caller after committing")
	assert.Equal(t, loc.ID, signalled.ID)
}

func TestSelectReplacesPrior(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	a, err := repo.AddLocation(ctx, location.Candidate{Latitude: 10, Longitude: 20})
	require.NoError(t, err)
	b, err := repo.AddLocation(ctx, location.Candidate{Latitude: 30, Longitude: 40})
	require.NoError(t, err)

	p := New(repo, nil, nil)
	require.NoError(t, p.Select(ctx, a))
	require.NoError(t, p.Select(ctx, b))

	selected := repo.SelectedLocation()
	require.NotNil(t, selected)
	assert.Equal(t, b.ID, selected.ID)
	assert.Len(t, repo.Locations(), 2)
}

func TestDeleteConfirmed(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	loc, err := repo.AddLocation(ctx, location.Candidate{Latitude: 10, Longitude: 20})
	require.NoError(t, err)

	p := New(repo, func(string) bool { return true }, nil)
	require.NoError(t, p.Delete(ctx, loc.ID))

	assert.Empty(t, repo.Locations())
}

func TestDeleteCancelled(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	loc, err := repo.AddLocation(ctx, location.Candidate{Latitude: 10, Longitude: 20})
	require.NoError(t, err)
	require.NoError(t, repo.SetSelectedLocation(ctx, &loc))

	p := New(repo, func(string) bool { return false }, nil)
	require.NoError(t, p.Delete(ctx, loc.ID))

	assert.Len(t, repo.Locations(), 1, "cancellation leaves state unchanged")
	assert.NotNil(t, repo.SelectedLocation())
}

func TestDeselect(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	loc, err := repo.AddLocation(ctx, location.Candidate{Latitude: 10, Longitude: 20})
	require.NoError(t, err)
	require.NoError(t, repo.SetSelectedLocation(ctx, &loc))

	p := New(repo, nil, nil)
	require.NoError(t, p.Deselect(ctx))

	assert.Nil(t, repo.SelectedLocation())
}

func TestLocationsFiltering(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.AddLocation(ctx, location.Candidate{Latitude: 10, Longitude: 20, Address: "Alpha"})
	require.NoError(t, err)
	_, err = repo.AddLocation(ctx, location.Candidate{Latitude: 30, Longitude: 40, Address: "Beta"})
	require.NoError(t, err)

	p := New(repo, nil, nil)

	assert.Len(t, p.Locations(""), 2)

	got := p.Locations("beta")
	require.Len(t, got, 1)
	assert.Equal(t, "Beta", got[0].Address)
}
