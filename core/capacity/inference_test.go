package capacity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/standwait/core/model"
)

func TestBlendedServiceRate(t *testing.T) {
	in := New(Config{})
	mix := []model.CategoryMix{
		{Location: "A", Category: "Beer", AvgItems: 50},
		{Location: "A", Category: "snacks", AvgItems: 50},
	}
	assert.InDelta(t, (1.33+3.0)/2, in.BlendedServiceRate(mix), 1e-9)
	assert.Equal(t, 1.5, in.BlendedServiceRate(nil))
	assert.Equal(t, 1.5, in.BlendedServiceRate([]model.CategoryMix{{Category: "beer"}}))
	assert.Equal(t, 1.5, in.BlendedServiceRate([]model.CategoryMix{{Category: "pretzels", AvgItems: 4}}))
}

func TestInferServersBounds(t *testing.T) {
	in := New(Config{})
	assert.Equal(t, 1, in.InferServers(0, 1))
	assert.Equal(t, 1, in.InferServers(5, 0))
	assert.Equal(t, 1, in.InferServers(0.5, 1))
	// 4/1 * 0.7 = 2.8
	assert.Equal(t, 3, in.InferServers(4, 1))
	assert.Equal(t, 6, in.InferServers(100, 1))
}

func TestP75Capacity(t *testing.T) {
	in := New(Config{})
	base := time.Date(2024, 4, 5, 18, 0, 0, 0, time.UTC)
	var events []model.TransactionEvent
	for m, q := range []int{1, 2, 3, 4} {
		events = append(events, model.TransactionEvent{
			Location: "A", Item: "hot dog", Quantity: q,
			Timestamp: base.Add(time.Duration(m) * time.Minute),
		})
	}
	events = append(events,
		model.TransactionEvent{Location: "A", Quantity: -5, Timestamp: base},
		model.TransactionEvent{Location: "B", Quantity: 2, Timestamp: base},
		model.TransactionEvent{Location: "B", Quantity: 2, Timestamp: base.Add(30 * time.Second)},
	)
	assert.InDelta(t, 3.25, in.P75Capacity(events, "A"), 1e-9)
	assert.Equal(t, 4.0, in.P75Capacity(events, "B"))
	assert.Equal(t, 1.0, in.P75Capacity(events, "missing"))

	all := in.PerMinuteCapacities(events)
	assert.Equal(t, map[string]float64{"A": 3, "B": 4}, all)
}

func TestProfileSources(t *testing.T) {
	in := New(Config{})
	mix := []model.CategoryMix{{Location: "A", Category: "hot food", AvgItems: 10}}

	p := in.Profile("A", mix, 4, 0)
	assert.Equal(t, SourceCategoryMix, p.Source)
	assert.Equal(t, 1.0, p.ServiceRate)
	assert.Equal(t, 3, p.Servers)

	p = in.Profile("B", nil, 0, 6)
	assert.Equal(t, SourceP75, p.Source)
	assert.Equal(t, 1.5, p.ServiceRate)
	assert.Equal(t, 3, p.Servers)

	p = in.Profile("C", nil, 0, 0)
	assert.Equal(t, SourceDefault, p.Source)
	assert.Equal(t, 1, p.Servers)
}

func TestProfilesCoversEveryLocation(t *testing.T) {
	in := New(Config{})
	mixes := []model.CategoryMix{{Location: "A", Category: "snacks", AvgItems: 3}}
	got := in.Profiles(mixes, map[string]float64{"B": 3}, map[string]float64{"C": 2})
	assert.Len(t, got, 3)
	assert.Equal(t, SourceCategoryMix, got["A"].Source)
	assert.Equal(t, SourceDefault, got["B"].Source)
	assert.Equal(t, SourceP75, got["C"].Source)
}

func TestCustomRatesAreCaseInsensitive(t *testing.T) {
	in := New(Config{CategoryRates: map[string]float64{"Nachos": 2}})
	assert.Equal(t, 2.0, in.Rate("NACHOS"))
	assert.Equal(t, 1.5, in.Rate("beer"))
}

func TestQuantileInterpolatesOrderStatistics(t *testing.T) {
	cases := []struct {
		vals []float64
		want float64
	}{
		{[]float64{5}, 5},
		{[]float64{1, 2}, 1.75},
		{[]float64{1, 2, 3, 4}, 3.25},
		{[]float64{1, 2, 3, 4, 5}, 4},
		{[]float64{2, 2, 2, 10}, 4},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, quantile(0.75, c.vals), 1e-9, "%v", c.vals)
	}
}
