// Package recommend ranks stands by estimated wait and evaluates walk plus
// wait routes from a seat zone. Every operation takes the moment to evaluate
// explicitly; nothing reads the wall clock.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kilianp07/standwait/core/capacity"
	"github.com/kilianp07/standwait/core/logger"
	"github.com/kilianp07/standwait/core/metrics"
	"github.com/kilianp07/standwait/core/model"
	"github.com/kilianp07/standwait/core/queue"
	"github.com/kilianp07/standwait/core/reference"
)

const topItemCount = 3

// Engine produces estimates and routes from read-only reference data.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	store     reference.Store
	estimator queue.Estimator
	inference *capacity.Inference
	cfg       Config
	sink      metrics.MetricsSink
	log       logger.Logger
}

// Option customises an Engine.
type Option func(*Engine)

// WithMetrics records every computed wait estimate on sink.
func WithMetrics(sink metrics.MetricsSink) Option {
	return func(e *Engine) {
		if sink != nil {
			e.sink = sink
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine returns an Engine reading from store.
func NewEngine(store reference.Store, est queue.Estimator, inf *capacity.Inference, cfg Config, opts ...Option) *Engine {
	cfg.SetDefaults()
	e := &Engine{
		store:     store,
		estimator: est,
		inference: inf,
		cfg:       cfg,
		sink:      metrics.NopSink{},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Config returns the engine policy.
func (e *Engine) Config() Config { return e.cfg }

// snapshot is the reference data needed to estimate every stand at a moment.
type snapshot struct {
	game      *model.Game
	locations []model.Location
	estimates map[string]model.WaitEstimate
	sales     []model.ItemSale
}

func refErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", model.ErrReference, op, err)
}

// load gathers reference data and estimates the wait of every stand at at.
func (e *Engine) load(ctx context.Context, at time.Time, opponent, weekday string) (*snapshot, error) {
	game, err := e.store.GameOn(ctx, at)
	if err != nil {
		return nil, refErr("game", err)
	}
	filter := reference.DemandFilter{Opponent: opponent, Weekday: weekday}
	if filter.Opponent == "" && game != nil {
		filter.Opponent = game.Opponent
	}
	locations, err := e.store.Locations(ctx)
	if err != nil {
		return nil, refErr("locations", err)
	}
	sales, err := e.store.ItemSales(ctx)
	if err != nil {
		return nil, refErr("item sales", err)
	}
	estimates, err := e.estimates(ctx, at, filter, locations)
	if err != nil {
		return nil, err
	}
	return &snapshot{game: game, locations: locations, estimates: estimates, sales: sales}, nil
}

func (e *Engine) estimates(ctx context.Context, at time.Time, filter reference.DemandFilter, locations []model.Location) (map[string]model.WaitEstimate, error) {
	samples, mix, err := e.demand(ctx, filter, locations)
	if err != nil {
		return nil, err
	}
	peaks, err := e.store.PeakThroughput(ctx)
	if err != nil {
		return nil, refErr("peak throughput", err)
	}
	txs, err := e.store.Transactions(ctx, at)
	if err != nil {
		return nil, refErr("transactions", err)
	}
	profiles := e.inference.Profiles(mix, peaks, e.inference.PerMinuteCapacities(txs))
	selected := SelectBuckets(samples, at, e.cfg.SlotMinutes)

	names := make([]string, 0, len(locations))
	for _, l := range locations {
		names = append(names, l.Name)
	}
	out := make(map[string]model.WaitEstimate, len(names))
	for _, name := range names {
		var lambda float64
		if s, ok := selected[name]; ok {
			lambda = s.AvgItems / float64(e.cfg.SlotMinutes)
		}
		p, ok := profiles[name]
		if !ok {
			p = e.inference.Profile(name, nil, 0, 0)
		}
		out[name] = e.estimator.Estimate(name, lambda, p.ServiceRate, p.Servers)
	}
	return out, nil
}

// demand returns the demand samples and category mix under filter. Stands
// without rows under filter take their rows from every game.
func (e *Engine) demand(ctx context.Context, filter reference.DemandFilter, locations []model.Location) ([]model.DemandSample, []model.CategoryMix, error) {
	samples, err := e.store.DemandSamples(ctx, filter)
	if err != nil {
		return nil, nil, refErr("demand samples", err)
	}
	mix, err := e.store.CategoryMix(ctx, filter)
	if err != nil {
		return nil, nil, refErr("category mix", err)
	}
	if filter == (reference.DemandFilter{}) {
		return samples, mix, nil
	}

	sampled := make(map[string]bool, len(samples))
	for _, s := range samples {
		sampled[s.Location] = true
	}
	mixed := make(map[string]bool, len(mix))
	for _, m := range mix {
		mixed[m.Location] = true
	}
	var needSamples, needMix bool
	for _, l := range locations {
		needSamples = needSamples || !sampled[l.Name]
		needMix = needMix || !mixed[l.Name]
	}

	if needSamples {
		all, err := e.store.DemandSamples(ctx, reference.DemandFilter{})
		if err != nil {
			return nil, nil, refErr("demand samples", err)
		}
		n := len(samples)
		for _, s := range all {
			if !sampled[s.Location] {
				samples = append(samples, s)
			}
		}
		if len(samples) > n {
			e.logf("demand samples for %+v missing at some stands, using all games there", filter)
		}
	}
	if needMix {
		all, err := e.store.CategoryMix(ctx, reference.DemandFilter{})
		if err != nil {
			return nil, nil, refErr("category mix", err)
		}
		for _, m := range all {
			if !mixed[m.Location] {
				mix = append(mix, m)
			}
		}
	}
	return samples, mix, nil
}

// Estimate ranks every stand at req.At, optionally restricted to stands
// serving req.Category, and recommends the shortest wait.
func (e *Engine) Estimate(ctx context.Context, req EstimateRequest) (EstimateResult, error) {
	snap, err := e.load(ctx, req.At, req.Opponent, req.Weekday)
	if err != nil {
		return EstimateResult{}, err
	}
	served := servedCategories(snap.sales, e.cfg.SupportThreshold)
	tops := topItems(snap.sales, topItemCount)

	stands := make([]StandStatus, 0, len(snap.locations))
	for _, loc := range snap.locations {
		est := snap.estimates[loc.Name]
		stands = append(stands, StandStatus{
			Name:        loc.Name,
			WaitMinutes: est.WaitMinutes,
			Traffic:     est.Traffic,
			Categories:  nonNil(served[loc.Name]),
			TopItems:    nonNil(tops[loc.Name]),
			Position:    loc,
			Estimate:    est,
		})
	}
	if req.Category != "" {
		stands = FilterByCategory(stands, snap.sales, req.Category, e.cfg.SupportThreshold)
	}
	stands = Rank(stands)
	e.record(snap.estimates, "estimate", req.At)

	res := EstimateResult{
		At:       req.At,
		Game:     snap.game,
		Category: req.Category,
		Stands:   stands,
	}
	start := e.gameStart(req.At, snap.game)
	res.Period = e.periodAt(req.At, start)
	if len(stands) > 0 {
		best := stands[0]
		reason := fmt.Sprintf("shortest estimated wait (%.1f min, %s traffic)", best.WaitMinutes, best.Traffic)
		if req.Category != "" {
			reason = fmt.Sprintf("shortest estimated wait for %s (%.1f min, %s traffic)", req.Category, best.WaitMinutes, best.Traffic)
		}
		res.Recommendation = &Recommendation{Location: best.Name, WaitMinutes: best.WaitMinutes, Reason: reason}
	}
	timeline, err := e.Timeline(ctx, start, reference.DemandFilter{Opponent: req.Opponent, Weekday: req.Weekday}, snap.game, snap.locations)
	if err != nil {
		return EstimateResult{}, err
	}
	res.Timeline = timeline
	return res, nil
}

func (e *Engine) record(estimates map[string]model.WaitEstimate, source string, at time.Time) {
	names := make([]string, 0, len(estimates))
	for n := range estimates {
		names = append(names, n)
	}
	sort.Strings(names)
	evs := make([]metrics.WaitEstimateEvent, 0, len(names))
	for _, n := range names {
		evs = append(evs, metrics.WaitEstimateEvent{Estimate: estimates[n], Source: source, Time: at})
	}
	if err := e.sink.RecordWaitEstimates(evs); err != nil {
		e.logf("record wait estimates: %v", err)
	}
}

func (e *Engine) logf(format string, args ...any) {
	if e.log != nil {
		e.log.Warnf(format, args...)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
