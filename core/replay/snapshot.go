package replay

import (
	"math"
	"sort"

	"github.com/kilianp07/standwait/core/model"
	"github.com/kilianp07/standwait/core/queue"
)

// SnapshotBuilder turns frames into snapshots for a fixed set of stands.
type SnapshotBuilder struct {
	estimator      queue.Estimator
	capacity       map[string]float64
	locations      []string
	factor         float64
	defaultCap     float64
	maxUtilization float64
}

// NewSnapshotBuilder returns a builder. capacity holds the p75 per-minute
// throughput of each stand; stands missing from it use defaultCapacity.
// Locations are reported in ascending name order.
func NewSnapshotBuilder(cfg Config, est queue.Estimator, locations []string, capacity map[string]float64, defaultCapacity float64) *SnapshotBuilder {
	cfg.SetDefaults()
	locs := append([]string(nil), locations...)
	sort.Strings(locs)
	return &SnapshotBuilder{
		estimator:      est,
		capacity:       capacity,
		locations:      locs,
		factor:         cfg.CapacityFactor,
		defaultCap:     defaultCapacity,
		maxUtilization: cfg.MaxUtilization,
	}
}

// Build computes the snapshot of a frame.
func (b *SnapshotBuilder) Build(f Frame) model.Snapshot {
	byLoc := make(map[string]model.TimeBucket, len(f.Buckets))
	for _, bk := range f.Buckets {
		byLoc[bk.Location] = bk
	}
	minutes := f.End.Sub(f.Start).Minutes()
	snap := model.Snapshot{
		Index:         f.Index,
		SimulatedTime: f.End,
		BucketStart:   f.Start,
		BucketEnd:     f.End,
		Stands:        make([]model.StandState, 0, len(b.locations)),
	}
	for _, loc := range b.locations {
		snap.Stands = append(snap.Stands, b.stand(loc, byLoc[loc], minutes))
	}
	return snap
}

func (b *SnapshotBuilder) stand(loc string, bk model.TimeBucket, minutes float64) model.StandState {
	st := model.StandState{
		Location:         loc,
		OrdersInBucket:   bk.OrderCount,
		QuantityInBucket: bk.Quantity,
		TopItems:         bk.TopItems,
	}
	if st.TopItems == nil {
		st.TopItems = []model.ItemQuantity{}
	}
	var lambda float64
	if minutes > 0 {
		lambda = float64(bk.Quantity) / minutes
		st.OrdersPerMinute = float64(bk.OrderCount) / minutes
	}
	p75, ok := b.capacity[loc]
	if !ok || p75 <= 0 {
		p75 = b.defaultCap
	}
	kappa := p75 * b.factor
	var rho float64
	if kappa > 0 {
		rho = lambda / kappa
	} else if lambda > 0 {
		rho = b.maxUtilization
	}
	st.WaitMinutes = b.estimator.ReplayWait(lambda, kappa)
	st.Utilization = math.Min(math.Max(rho, 0), b.maxUtilization)
	st.CrowdIndex = crowdIndex(rho, st.WaitMinutes, b.estimator.Config().WaitCap)
	return st
}

func crowdIndex(rho, wait, waitCap float64) float64 {
	v := 0.6 * math.Min(rho, 1)
	if waitCap > 0 {
		v += 0.4 * wait / waitCap
	}
	return math.Min(math.Max(v, 0), 1)
}
