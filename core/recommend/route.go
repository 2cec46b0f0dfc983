package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kilianp07/standwait/core/metrics"
	"github.com/kilianp07/standwait/core/model"
)

// WalkMinutes converts a distance into walking time.
func WalkMinutes(meters, speed float64) float64 {
	if speed <= 0 {
		return 0
	}
	return meters / speed
}

// RoundTrip is the walk to the stand, the wait and the walk back.
func RoundTrip(meters, speed, wait float64) float64 {
	return 2*WalkMinutes(meters, speed) + wait
}

// Route finds the stand with the lowest round trip for req.Item from
// req.ZoneID. When that exceeds a positive budget it lists faster items of the
// same category at other stands.
func (e *Engine) Route(ctx context.Context, req RouteRequest) (RouteResult, error) {
	zones, err := e.store.Zones(ctx)
	if err != nil {
		return RouteResult{}, refErr("zones", err)
	}
	zone, ok := findZone(zones, req.ZoneID)
	if !ok {
		return RouteResult{}, fmt.Errorf("%w: unknown seat zone %q", model.ErrInvalidRequest, req.ZoneID)
	}
	snap, err := e.load(ctx, req.At, req.Opponent, req.Weekday)
	if err != nil {
		return RouteResult{}, err
	}
	dists, err := e.store.ZoneDistances(ctx)
	if err != nil {
		return RouteResult{}, refErr("zone distances", err)
	}
	meters := make(map[string]float64)
	for _, d := range dists {
		if d.ZoneID == zone.ID {
			meters[d.Location] = d.Meters
		}
	}

	item := strings.TrimSpace(req.Item)
	var category, itemName string
	var candidates []RouteLeg
	for _, s := range sortedSales(snap.sales) {
		if !strings.EqualFold(s.Item, item) || s.Quantity <= 0 {
			continue
		}
		if category == "" {
			category, itemName = s.Category, s.Item
		}
		if leg, ok := e.leg(s, meters, snap.estimates); ok {
			candidates = append(candidates, leg)
		}
	}
	if category == "" {
		return RouteResult{}, fmt.Errorf("%w: no stand sells %q", model.ErrInvalidRequest, req.Item)
	}
	if len(candidates) == 0 {
		return RouteResult{}, fmt.Errorf("%w: no stand selling %q is reachable from zone %s", model.ErrInvalidRequest, itemName, zone.ID)
	}
	sortLegs(candidates)
	preferred := candidates[0]

	res := RouteResult{
		Zone:          zone,
		Category:      category,
		BudgetMinutes: req.BudgetMinutes,
		Preferred:     preferred,
		WithinBudget:  req.BudgetMinutes <= 0 || preferred.RoundTripMinutes <= req.BudgetMinutes,
		Alternatives:  []RouteLeg{},
	}
	if !res.WithinBudget {
		res.Alternatives = e.alternatives(snap, meters, category, preferred, req.BudgetMinutes)
	}
	res.Notes = e.notes(res)

	e.record(map[string]model.WaitEstimate{preferred.Location: snap.estimates[preferred.Location]}, "route", req.At)
	if rec, ok := e.sink.(metrics.RouteRecorder); ok {
		if err := rec.RecordRoute(metrics.RouteEvent{
			ZoneID:           zone.ID,
			Item:             itemName,
			Preferred:        preferred.Location,
			RoundTripMinutes: preferred.RoundTripMinutes,
			WithinBudget:     res.WithinBudget,
			Alternatives:     len(res.Alternatives),
			Time:             req.At,
		}); err != nil {
			e.logf("record route: %v", err)
		}
	}
	return res, nil
}

func (e *Engine) leg(s model.ItemSale, meters map[string]float64, estimates map[string]model.WaitEstimate) (RouteLeg, bool) {
	m, ok := meters[s.Location]
	if !ok {
		return RouteLeg{}, false
	}
	wait := estimates[s.Location].WaitMinutes
	return RouteLeg{
		Location:         s.Location,
		Item:             s.Item,
		Meters:           m,
		WalkMinutes:      WalkMinutes(m, e.cfg.WalkingSpeed),
		WaitMinutes:      wait,
		RoundTripMinutes: RoundTrip(m, e.cfg.WalkingSpeed, wait),
	}, true
}

func (e *Engine) alternatives(snap *snapshot, meters map[string]float64, category string, preferred RouteLeg, budget float64) []RouteLeg {
	seen := make(map[[2]string]bool)
	var out []RouteLeg
	for _, s := range sortedSales(snap.sales) {
		if s.Location == preferred.Location || s.Quantity <= 0 || !strings.EqualFold(s.Category, category) {
			continue
		}
		key := [2]string{strings.ToLower(s.Item), s.Location}
		if seen[key] {
			continue
		}
		leg, ok := e.leg(s, meters, snap.estimates)
		if !ok {
			continue
		}
		if leg.RoundTripMinutes < preferred.RoundTripMinutes && leg.RoundTripMinutes <= budget {
			seen[key] = true
			out = append(out, leg)
		}
	}
	sortLegs(out)
	if len(out) > e.cfg.MaxAlternatives {
		out = out[:e.cfg.MaxAlternatives]
	}
	if out == nil {
		out = []RouteLeg{}
	}
	return out
}

func (e *Engine) notes(res RouteResult) []string {
	notes := []string{
		"Wait times are estimated from historical sales, not measured queues.",
		fmt.Sprintf("Walking times assume %.0f m/min each way.", e.cfg.WalkingSpeed),
	}
	switch {
	case res.BudgetMinutes <= 0:
	case res.WithinBudget:
		notes = append(notes, fmt.Sprintf("%s at %s fits your %.0f minute budget.", res.Preferred.Item, res.Preferred.Location, res.BudgetMinutes))
	case len(res.Alternatives) == 0:
		notes = append(notes, fmt.Sprintf("No %s option fits your %.0f minute budget.", res.Category, res.BudgetMinutes))
	default:
		notes = append(notes, fmt.Sprintf("%s at %s exceeds your %.0f minute budget; faster %s options are listed.", res.Preferred.Item, res.Preferred.Location, res.BudgetMinutes, res.Category))
	}
	return notes
}

func findZone(zones []model.SeatZone, id string) (model.SeatZone, bool) {
	id = strings.TrimSpace(id)
	for _, z := range zones {
		if strings.EqualFold(z.ID, id) {
			return z, true
		}
	}
	return model.SeatZone{}, false
}

// sortedSales orders sales by location then item so results do not depend on
// the store's row order.
func sortedSales(sales []model.ItemSale) []model.ItemSale {
	out := append([]model.ItemSale(nil), sales...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Location != out[j].Location {
			return out[i].Location < out[j].Location
		}
		return out[i].Item < out[j].Item
	})
	return out
}

func sortLegs(legs []RouteLeg) {
	sort.SliceStable(legs, func(i, j int) bool {
		if legs[i].RoundTripMinutes != legs[j].RoundTripMinutes {
			return legs[i].RoundTripMinutes < legs[j].RoundTripMinutes
		}
		if legs[i].Item != legs[j].Item {
			return legs[i].Item < legs[j].Item
		}
		return legs[i].Location < legs[j].Location
	})
}
