package reference

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) *MemoryStore {
	t.Helper()
	ds, err := LoadDataset(filepath.Join("testdata", "venue.yaml"))
	require.NoError(t, err)
	return NewMemoryStore(*ds)
}

func TestLoadDatasetYAML(t *testing.T) {
	s := loadFixture(t)
	ctx := context.Background()
	locs, err := s.Locations(ctx)
	require.NoError(t, err)
	assert.Len(t, locs, 2)

	peaks, err := s.PeakThroughput(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6.0, peaks["South Taps"])
}

func TestLoadDatasetJSONAndUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "venue.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"zones":[{"id":"7","label":"Seven"}]}`), 0o644))
	ds, err := LoadDataset(path)
	require.NoError(t, err)
	assert.Equal(t, "Seven", ds.Zones[0].Label)

	bad := filepath.Join(dir, "venue.toml")
	require.NoError(t, os.WriteFile(bad, []byte(""), 0o644))
	_, err = LoadDataset(bad)
	assert.Error(t, err)
}

func TestTransactionsForDayAreOrdered(t *testing.T) {
	s := loadFixture(t)
	evs, err := s.Transactions(context.Background(), time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, "North Grill", evs[0].Location)
	assert.True(t, evs[0].Timestamp.Before(evs[1].Timestamp))

	none, err := s.Transactions(context.Background(), time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDemandFilter(t *testing.T) {
	s := loadFixture(t)
	ctx := context.Background()
	all, err := s.DemandSamples(ctx, DemandFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	rivals, err := s.DemandSamples(ctx, DemandFilter{Opponent: "rivals"})
	require.NoError(t, err)
	require.Len(t, rivals, 1)
	assert.Equal(t, "North Grill", rivals[0].Location)

	sunday, err := s.CategoryMix(ctx, DemandFilter{Weekday: "SUNDAY"})
	require.NoError(t, err)
	require.Len(t, sunday, 1)
	assert.Equal(t, "Beer", sunday[0].Category)
}

func TestGameOn(t *testing.T) {
	s := loadFixture(t)
	g, err := s.GameOn(context.Background(), time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, "Rivals", g.Opponent)

	g, err = s.GameOn(context.Background(), time.Date(2024, 4, 6, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestSampleVenueIsConsistent(t *testing.T) {
	ds, err := LoadDataset("../../data/venue.yaml")
	require.NoError(t, err)

	known := map[string]bool{}
	for _, l := range ds.Locations {
		known[l.Name] = true
	}
	require.Len(t, known, 4)
	for _, d := range ds.ZoneDistances {
		assert.True(t, known[d.Location], d.Location)
	}
	for _, s := range ds.DemandSamples {
		assert.True(t, known[s.Location], s.Location)
	}
	for _, s := range ds.ItemSales {
		assert.True(t, known[s.Location], s.Location)
	}
	assert.Len(t, ds.ZoneDistances, len(ds.Zones)*len(ds.Locations))

	store := NewMemoryStore(*ds)
	evs, err := store.Transactions(context.Background(), time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, evs, len(ds.Transactions))
	game, err := store.GameOn(context.Background(), time.Date(2024, 4, 7, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, game)
	assert.Equal(t, "Visitors", game.Opponent)
}
