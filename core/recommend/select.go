package recommend

import (
	"time"

	"github.com/kilianp07/standwait/core/model"
)

// SelectBuckets picks one demand sample per location for the moment at. The
// sample of the exact hour and slot wins; otherwise the sample nearest in
// minute-of-day is used, ties going to the one listed first. Each location is
// resolved on its own and may land on a different offset from the others.
func SelectBuckets(samples []model.DemandSample, at time.Time, slotMinutes int) map[string]model.DemandSample {
	if slotMinutes <= 0 {
		slotMinutes = 10
	}
	hour, slot := at.Hour(), at.Minute()/slotMinutes
	target := hour*60 + slot*slotMinutes

	type pick struct {
		sample model.DemandSample
		dist   int
		exact  bool
	}
	best := make(map[string]pick)
	for _, s := range samples {
		exact := s.Hour == hour && s.Slot == slot
		dist := abs(s.MinuteOfDay(slotMinutes) - target)
		cur, ok := best[s.Location]
		switch {
		case !ok:
		case cur.exact:
			continue
		case !exact && dist >= cur.dist:
			continue
		}
		best[s.Location] = pick{sample: s, dist: dist, exact: exact}
	}
	out := make(map[string]model.DemandSample, len(best))
	for loc, p := range best {
		out[loc] = p.sample
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
