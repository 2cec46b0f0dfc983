// Package capacity infers per-stand service rates and server counts from
// historical sales.
package capacity

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/standwait/core/model"
)

const (
	SourceCategoryMix = "category_mix"
	SourceP75         = "p75"
	SourceDefault     = "default"
)

// Inference derives service profiles. It is stateless after construction.
type Inference struct {
	cfg   Config
	rates map[string]float64
}

// New returns an Inference for cfg with defaults applied.
func New(cfg Config) *Inference {
	cfg.SetDefaults()
	rates := make(map[string]float64, len(cfg.CategoryRates))
	for k, v := range cfg.CategoryRates {
		rates[normalize(k)] = v
	}
	return &Inference{cfg: cfg, rates: rates}
}

// Config returns the configuration in use.
func (in *Inference) Config() Config { return in.cfg }

// Rate returns the service rate for a category.
func (in *Inference) Rate(category string) float64 {
	if r, ok := in.rates[normalize(category)]; ok {
		return r
	}
	return in.cfg.DefaultRate
}

// BlendedServiceRate weights category rates by their share of items sold.
func (in *Inference) BlendedServiceRate(mix []model.CategoryMix) float64 {
	var total, weighted float64
	for _, m := range mix {
		if m.AvgItems <= 0 {
			continue
		}
		total += m.AvgItems
		weighted += m.AvgItems * in.Rate(m.Category)
	}
	if total <= 0 {
		return in.cfg.DefaultRate
	}
	return weighted / total
}

// InferServers estimates the number of open registers from the peak per-minute
// throughput and the per-server rate.
func (in *Inference) InferServers(peakPerMin, mu float64) int {
	if peakPerMin <= 0 || mu <= 0 {
		return 1
	}
	c := int(math.Round(peakPerMin / mu * in.cfg.UtilizationFactor))
	if c < 1 {
		return 1
	}
	if c > in.cfg.MaxServers {
		return in.cfg.MaxServers
	}
	return c
}

// P75Capacity returns the 75th percentile of per-minute quantity sold at the
// location over the minutes in which it sold anything.
func (in *Inference) P75Capacity(events []model.TransactionEvent, location string) float64 {
	perMinute := make(map[int64]float64)
	for _, ev := range events {
		if ev.Location != location || !ev.IsSale() {
			continue
		}
		perMinute[ev.Timestamp.Unix()/60] += float64(ev.Quantity)
	}
	return in.p75(perMinute)
}

// PerMinuteCapacities returns P75Capacity for every location present in events.
func (in *Inference) PerMinuteCapacities(events []model.TransactionEvent) map[string]float64 {
	perLoc := make(map[string]map[int64]float64)
	for _, ev := range events {
		if !ev.IsSale() {
			continue
		}
		m, ok := perLoc[ev.Location]
		if !ok {
			m = make(map[int64]float64)
			perLoc[ev.Location] = m
		}
		m[ev.Timestamp.Unix()/60] += float64(ev.Quantity)
	}
	out := make(map[string]float64, len(perLoc))
	for loc, m := range perLoc {
		out[loc] = in.p75(m)
	}
	return out
}

func (in *Inference) p75(perMinute map[int64]float64) float64 {
	if len(perMinute) == 0 {
		return in.cfg.DefaultCapacity
	}
	vals := make([]float64, 0, len(perMinute))
	for _, v := range perMinute {
		vals = append(vals, v)
	}
	sort.Float64s(vals)
	return quantile(0.75, vals)
}

// quantile interpolates linearly between order statistics, placing the i-th of
// n sorted values at (i-1)/(n-1). LinInterp places it at i/n, so p is mapped
// onto that scale first.
func quantile(p float64, sorted []float64) float64 {
	n := float64(len(sorted))
	return stat.Quantile((1+(n-1)*p)/n, stat.LinInterp, sorted, nil)
}

// Profile builds the service profile of one stand. A stand with a category mix
// uses the blended rate. A stand without one falls back to DefaultRate, with
// servers inferred from the p75 throughput when it is known.
func (in *Inference) Profile(location string, mix []model.CategoryMix, peak, p75 float64) model.ServiceProfile {
	if len(mix) > 0 {
		mu := in.BlendedServiceRate(mix)
		return model.ServiceProfile{
			Location:    location,
			ServiceRate: mu,
			Servers:     in.InferServers(peak, mu),
			Source:      SourceCategoryMix,
		}
	}
	mu := in.cfg.DefaultRate
	if p75 > 0 {
		return model.ServiceProfile{
			Location:    location,
			ServiceRate: mu,
			Servers:     in.InferServers(p75, mu),
			Source:      SourceP75,
		}
	}
	return model.ServiceProfile{
		Location:    location,
		ServiceRate: mu,
		Servers:     in.InferServers(peak, mu),
		Source:      SourceDefault,
	}
}

// Profiles builds a profile for every location named in mixes, peaks or
// fallback.
func (in *Inference) Profiles(mixes []model.CategoryMix, peaks, fallback map[string]float64) map[string]model.ServiceProfile {
	byLoc := make(map[string][]model.CategoryMix)
	for _, m := range mixes {
		byLoc[m.Location] = append(byLoc[m.Location], m)
	}
	locs := make(map[string]struct{})
	for l := range byLoc {
		locs[l] = struct{}{}
	}
	for l := range peaks {
		locs[l] = struct{}{}
	}
	for l := range fallback {
		locs[l] = struct{}{}
	}
	out := make(map[string]model.ServiceProfile, len(locs))
	for l := range locs {
		out[l] = in.Profile(l, byLoc[l], peaks[l], fallback[l])
	}
	return out
}
