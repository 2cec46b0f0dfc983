package reference

import (
	"context"
	"sort"
	"time"

	"github.com/kilianp07/standwait/core/model"
)

// MemoryStore serves a Dataset from memory. The dataset is copied on
// construction and never modified afterwards.
type MemoryStore struct {
	ds Dataset
}

// NewMemoryStore returns a store over a copy of ds.
func NewMemoryStore(ds Dataset) *MemoryStore {
	cp := Dataset{
		Transactions:  append([]model.TransactionEvent(nil), ds.Transactions...),
		DemandSamples: append([]model.DemandSample(nil), ds.DemandSamples...),
		CategoryMix:   append([]model.CategoryMix(nil), ds.CategoryMix...),
		ItemSales:     append([]model.ItemSale(nil), ds.ItemSales...),
		Locations:     append([]model.Location(nil), ds.Locations...),
		Zones:         append([]model.SeatZone(nil), ds.Zones...),
		ZoneDistances: append([]model.ZoneDistance(nil), ds.ZoneDistances...),
		Games:         append([]model.Game(nil), ds.Games...),
		Peaks:         make(map[string]float64, len(ds.Peaks)),
	}
	for k, v := range ds.Peaks {
		cp.Peaks[k] = v
	}
	sort.SliceStable(cp.Transactions, func(i, j int) bool {
		return cp.Transactions[i].Timestamp.Before(cp.Transactions[j].Timestamp)
	})
	return &MemoryStore{ds: cp}
}

func (m *MemoryStore) Transactions(_ context.Context, date time.Time) ([]model.TransactionEvent, error) {
	y, mo, d := date.Date()
	var out []model.TransactionEvent
	for _, ev := range m.ds.Transactions {
		ey, em, ed := ev.Timestamp.In(date.Location()).Date()
		if ey == y && em == mo && ed == d {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *MemoryStore) DemandSamples(_ context.Context, f DemandFilter) ([]model.DemandSample, error) {
	var out []model.DemandSample
	for _, s := range m.ds.DemandSamples {
		if f.Matches(s.Opponent, s.Weekday) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MemoryStore) CategoryMix(_ context.Context, f DemandFilter) ([]model.CategoryMix, error) {
	var out []model.CategoryMix
	for _, c := range m.ds.CategoryMix {
		if f.Matches(c.Opponent, c.Weekday) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MemoryStore) PeakThroughput(context.Context) (map[string]float64, error) {
	out := make(map[string]float64, len(m.ds.Peaks))
	for k, v := range m.ds.Peaks {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryStore) ItemSales(context.Context) ([]model.ItemSale, error) {
	return append([]model.ItemSale(nil), m.ds.ItemSales...), nil
}

func (m *MemoryStore) Locations(context.Context) ([]model.Location, error) {
	return append([]model.Location(nil), m.ds.Locations...), nil
}

func (m *MemoryStore) Zones(context.Context) ([]model.SeatZone, error) {
	return append([]model.SeatZone(nil), m.ds.Zones...), nil
}

func (m *MemoryStore) ZoneDistances(context.Context) ([]model.ZoneDistance, error) {
	return append([]model.ZoneDistance(nil), m.ds.ZoneDistances...), nil
}

func (m *MemoryStore) GameOn(_ context.Context, date time.Time) (*model.Game, error) {
	y, mo, d := date.Date()
	for _, g := range m.ds.Games {
		gy, gm, gd := g.Start.In(date.Location()).Date()
		if gy == y && gm == mo && gd == d {
			game := g
			return &game, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }
