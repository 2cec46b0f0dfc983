package recommend

import (
	"context"
	"time"

	"github.com/kilianp07/standwait/core/model"
	"github.com/kilianp07/standwait/core/reference"
)

// gameStart returns the start of the game on the day of at, or the
// configured default start on that day when no game is scheduled.
func (e *Engine) gameStart(at time.Time, game *model.Game) time.Time {
	if game != nil && !game.Start.IsZero() {
		return game.Start
	}
	t, err := time.Parse("15:04", e.cfg.DefaultStart)
	if err != nil {
		t = time.Date(0, 1, 1, 19, 0, 0, 0, time.UTC)
	}
	y, m, d := at.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, at.Location())
}

// periodAt names the configured period containing at, or "" outside all periods.
func (e *Engine) periodAt(at, start time.Time) string {
	for _, p := range e.cfg.Periods {
		from := start.Add(time.Duration(p.StartOffset) * time.Minute)
		to := start.Add(time.Duration(p.EndOffset) * time.Minute)
		if !at.Before(from) && at.Before(to) {
			return p.Name
		}
	}
	return ""
}

// Timeline estimates every stand at the midpoint of each configured period
// and reports the mean wait per period.
func (e *Engine) Timeline(ctx context.Context, start time.Time, filter reference.DemandFilter, game *model.Game, locations []model.Location) ([]PeriodWait, error) {
	if filter.Opponent == "" && game != nil {
		filter.Opponent = game.Opponent
	}
	out := make([]PeriodWait, 0, len(e.cfg.Periods))
	for _, p := range e.cfg.Periods {
		from := start.Add(time.Duration(p.StartOffset) * time.Minute)
		to := start.Add(time.Duration(p.EndOffset) * time.Minute)
		mid := from.Add(to.Sub(from) / 2)
		ests, err := e.estimates(ctx, mid, filter, locations)
		if err != nil {
			return nil, err
		}
		var sum float64
		for _, l := range locations {
			sum += ests[l.Name].WaitMinutes
		}
		pw := PeriodWait{Name: p.Name, Start: from, End: to}
		if len(ests) > 0 {
			pw.MeanWaitMinutes = sum / float64(len(ests))
		}
		out = append(out, pw)
	}
	return out, nil
}
