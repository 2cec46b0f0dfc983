package replay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/standwait/core/capacity"
	"github.com/kilianp07/standwait/core/model"
	"github.com/kilianp07/standwait/core/queue"
	"github.com/kilianp07/standwait/core/reference"
)

type brokenStore struct{ reference.Store }

func (brokenStore) Transactions(context.Context, time.Time) ([]model.TransactionEvent, error) {
	return nil, errors.New("connection refused")
}

func planner() *Planner {
	return NewPlanner(Config{}, queue.NewEstimator(queue.Config{}), capacity.New(capacity.Config{}))
}

func TestPlannerLoadIncludesVenueStands(t *testing.T) {
	store := reference.NewMemoryStore(reference.Dataset{
		Transactions: sampleEvents(),
		Locations:    []model.Location{{Name: "Idle Cart"}},
	})
	s, err := planner().Load(context.Background(), store, day, 5*time.Minute)
	require.NoError(t, err)
	require.NoError(t, s.Start())

	snap, _, err := s.Tick()
	require.NoError(t, err)
	var names []string
	for _, st := range snap.Stands {
		names = append(names, st.Location)
	}
	assert.Contains(t, names, "Idle Cart")
}

func TestPlannerLoadEmptyDay(t *testing.T) {
	store := reference.NewMemoryStore(reference.Dataset{Transactions: sampleEvents()})
	_, err := planner().Load(context.Background(), store, day.AddDate(0, 0, 7), 0)
	assert.ErrorIs(t, err, model.ErrNoData)
}

func TestPlannerLoadWrapsStoreFailure(t *testing.T) {
	_, err := planner().Load(context.Background(), brokenStore{}, day, 0)
	assert.ErrorIs(t, err, model.ErrReference)
}

func TestPlannerRejectsWideBuckets(t *testing.T) {
	_, err := planner().Session(sampleEvents(), 2*time.Hour, nil)
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
}
