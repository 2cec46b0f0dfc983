package recommend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/standwait/core/model"
	"github.com/kilianp07/standwait/core/reference"
)

func TestRoundTripArithmetic(t *testing.T) {
	assert.Equal(t, 2.0, WalkMinutes(160, 80))
	assert.Equal(t, 7.0, RoundTrip(160, 80, 3))
}

func idleVenue() reference.Dataset {
	ds := venue()
	ds.DemandSamples = nil
	return ds
}

func TestRoutePrefersLowestRoundTrip(t *testing.T) {
	sink := &recordingSink{}
	e := newEngine(reference.NewMemoryStore(idleVenue()), WithMetrics(sink))
	res, err := e.Route(context.Background(), RouteRequest{ZoneID: "101", Item: "lager", At: gameDay})
	require.NoError(t, err)
	assert.Equal(t, "North Grill", res.Preferred.Location)
	assert.Equal(t, 2.0, res.Preferred.WalkMinutes)
	assert.Equal(t, 4.0, res.Preferred.RoundTripMinutes)
	assert.True(t, res.WithinBudget)
	assert.Empty(t, res.Alternatives)
	assert.Equal(t, "Beer", res.Category)
	assert.NotEmpty(t, res.Notes)
	require.Len(t, sink.routes, 1)
	assert.Equal(t, "North Grill", sink.routes[0].Preferred)
}

func TestRouteOverBudgetListsAlternatives(t *testing.T) {
	e := newEngine(reference.NewMemoryStore(idleVenue()))
	res, err := e.Route(context.Background(), RouteRequest{ZoneID: "101", Item: "IPA", BudgetMinutes: 6, At: gameDay})
	require.NoError(t, err)
	assert.Equal(t, "South Taps", res.Preferred.Location)
	assert.Equal(t, 10.0, res.Preferred.RoundTripMinutes)
	assert.False(t, res.WithinBudget)
	require.Len(t, res.Alternatives, 1)
	assert.Equal(t, "Lager", res.Alternatives[0].Item)
	assert.Equal(t, "North Grill", res.Alternatives[0].Location)
	assert.Equal(t, 4.0, res.Alternatives[0].RoundTripMinutes)
}

func TestRouteAlternativesCapped(t *testing.T) {
	ds := idleVenue()
	for _, item := range []string{"Stout", "Porter", "Pils", "Sour", "Wheat", "Bock"} {
		ds.ItemSales = append(ds.ItemSales, model.ItemSale{Location: "East Snacks", Category: "Beer", Item: item, Quantity: 10})
	}
	e := newEngine(reference.NewMemoryStore(ds))
	res, err := e.Route(context.Background(), RouteRequest{ZoneID: "101", Item: "IPA", BudgetMinutes: 8, At: gameDay})
	require.NoError(t, err)
	require.Len(t, res.Alternatives, 5)
	assert.Equal(t, "North Grill", res.Alternatives[0].Location)
	for i := 1; i < len(res.Alternatives); i++ {
		assert.LessOrEqual(t, res.Alternatives[i-1].RoundTripMinutes, res.Alternatives[i].RoundTripMinutes)
	}
}

func TestRouteNoAlternativeWithinBudget(t *testing.T) {
	e := newEngine(reference.NewMemoryStore(idleVenue()))
	res, err := e.Route(context.Background(), RouteRequest{ZoneID: "101", Item: "IPA", BudgetMinutes: 3, At: gameDay})
	require.NoError(t, err)
	assert.False(t, res.WithinBudget)
	assert.Empty(t, res.Alternatives)
	assert.Contains(t, res.Notes[len(res.Notes)-1], "No Beer option")
}

func TestRouteClientErrors(t *testing.T) {
	e := newEngine(reference.NewMemoryStore(idleVenue()))
	_, err := e.Route(context.Background(), RouteRequest{ZoneID: "999", Item: "Lager", At: gameDay})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)

	_, err = e.Route(context.Background(), RouteRequest{ZoneID: "101", Item: "Churros", At: gameDay})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
}

func TestRouteSkipsStandsWithoutDistance(t *testing.T) {
	ds := idleVenue()
	ds.ZoneDistances = ds.ZoneDistances[1:]
	e := newEngine(reference.NewMemoryStore(ds))
	res, err := e.Route(context.Background(), RouteRequest{ZoneID: "101", Item: "Lager", At: gameDay})
	require.NoError(t, err)
	assert.Equal(t, "South Taps", res.Preferred.Location)
}
