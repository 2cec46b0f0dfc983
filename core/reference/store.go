// Package reference defines the read-only handle to historical sales and
// venue geography used by the estimation components.
package reference

import (
	"context"
	"strings"
	"time"

	"github.com/kilianp07/standwait/core/model"
)

// DemandFilter narrows demand rows to games against an opponent or on a
// weekday. Empty fields match everything.
type DemandFilter struct {
	Opponent string
	Weekday  string
}

// Matches reports whether a row tagged with opponent and weekday passes the filter.
func (f DemandFilter) Matches(opponent, weekday string) bool {
	if f.Opponent != "" && !strings.EqualFold(f.Opponent, opponent) {
		return false
	}
	if f.Weekday != "" && !strings.EqualFold(f.Weekday, weekday) {
		return false
	}
	return true
}

// Store is the historical reference data. Implementations must be safe for
// concurrent use and must not be mutated while a computation reads them.
type Store interface {
	// Transactions returns the events of a calendar day ordered by timestamp.
	Transactions(ctx context.Context, date time.Time) ([]model.TransactionEvent, error)
	DemandSamples(ctx context.Context, f DemandFilter) ([]model.DemandSample, error)
	CategoryMix(ctx context.Context, f DemandFilter) ([]model.CategoryMix, error)
	// PeakThroughput returns the historical peak items per minute of each stand.
	PeakThroughput(ctx context.Context) (map[string]float64, error)
	ItemSales(ctx context.Context) ([]model.ItemSale, error)
	Locations(ctx context.Context) ([]model.Location, error)
	Zones(ctx context.Context) ([]model.SeatZone, error)
	ZoneDistances(ctx context.Context) ([]model.ZoneDistance, error)
	// GameOn returns the game scheduled on date or nil.
	GameOn(ctx context.Context, date time.Time) (*model.Game, error)
	Ping(ctx context.Context) error
}
