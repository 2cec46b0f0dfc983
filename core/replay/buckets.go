package replay

import (
	"sort"
	"time"

	"github.com/kilianp07/standwait/core/model"
)

const topItems = 3

type bucketKey struct {
	location string
	index    int
}

type accumulator struct {
	orders   int
	quantity int
	items    map[string]int
}

// BuildBuckets aggregates sales into fixed-width buckets anchored at the
// earliest sale. Refunds and zero-quantity lines are dropped. The result is
// ordered by index then location and is independent of the input order.
func BuildBuckets(events []model.TransactionEvent, width time.Duration) []model.TimeBucket {
	if width <= 0 {
		return nil
	}
	anchor, ok := Anchor(events)
	if !ok {
		return nil
	}
	acc := make(map[bucketKey]*accumulator)
	for _, ev := range events {
		if !ev.IsSale() {
			continue
		}
		k := bucketKey{location: ev.Location, index: int(ev.Timestamp.Sub(anchor) / width)}
		a, ok := acc[k]
		if !ok {
			a = &accumulator{items: make(map[string]int)}
			acc[k] = a
		}
		a.orders++
		a.quantity += ev.Quantity
		a.items[ev.Item] += ev.Quantity
	}
	out := make([]model.TimeBucket, 0, len(acc))
	for k, a := range acc {
		start := anchor.Add(time.Duration(k.index) * width)
		out = append(out, model.TimeBucket{
			Location:   k.location,
			Index:      k.index,
			Start:      start,
			End:        start.Add(width),
			OrderCount: a.orders,
			Quantity:   a.quantity,
			TopItems:   top(a.items, topItems),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Index != out[j].Index {
			return out[i].Index < out[j].Index
		}
		return out[i].Location < out[j].Location
	})
	return out
}

// Anchor returns the timestamp of the earliest sale.
func Anchor(events []model.TransactionEvent) (time.Time, bool) {
	var first time.Time
	found := false
	for _, ev := range events {
		if !ev.IsSale() {
			continue
		}
		if !found || ev.Timestamp.Before(first) {
			first = ev.Timestamp
			found = true
		}
	}
	return first, found
}

func top(items map[string]int, n int) []model.ItemQuantity {
	list := make([]model.ItemQuantity, 0, len(items))
	for name, q := range items {
		list = append(list, model.ItemQuantity{Item: name, Quantity: q})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Quantity != list[j].Quantity {
			return list[i].Quantity > list[j].Quantity
		}
		return list[i].Item < list[j].Item
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
