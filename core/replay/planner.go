package replay

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kilianp07/standwait/core/capacity"
	"github.com/kilianp07/standwait/core/model"
	"github.com/kilianp07/standwait/core/queue"
	"github.com/kilianp07/standwait/core/reference"
)

// Planner turns a day of transactions into ready-to-stream sessions.
type Planner struct {
	cfg       Config
	estimator queue.Estimator
	inference *capacity.Inference
}

// NewPlanner returns a Planner.
func NewPlanner(cfg Config, est queue.Estimator, inf *capacity.Inference) *Planner {
	cfg.SetDefaults()
	return &Planner{cfg: cfg, estimator: est, inference: inf}
}

// Config returns the replay configuration in use.
func (p *Planner) Config() Config { return p.cfg }

// Session buckets events at width and returns an idle session covering every
// stand in events plus the extra locations. It returns model.ErrNoData when
// the day has no sales.
func (p *Planner) Session(events []model.TransactionEvent, width time.Duration, locations []string) (*Session, error) {
	if width <= 0 {
		width = p.cfg.Width()
	}
	if width > time.Duration(p.cfg.MaxBucketMinutes)*time.Minute {
		return nil, fmt.Errorf("%w: bucket width %s exceeds %d minutes", model.ErrInvalidRequest, width, p.cfg.MaxBucketMinutes)
	}
	buckets := BuildBuckets(events, width)
	if len(buckets) == 0 {
		return nil, model.ErrNoData
	}
	anchor, _ := Anchor(events)
	frames := Timeline(buckets, anchor, width)

	seen := make(map[string]struct{})
	for _, b := range buckets {
		seen[b.Location] = struct{}{}
	}
	for _, l := range locations {
		seen[l] = struct{}{}
	}
	locs := make([]string, 0, len(seen))
	for l := range seen {
		locs = append(locs, l)
	}
	sort.Strings(locs)

	caps := p.inference.PerMinuteCapacities(events)
	builder := NewSnapshotBuilder(p.cfg, p.estimator, locs, caps, p.inference.Config().DefaultCapacity)
	return NewSession(frames, builder), nil
}

// Load reads the transactions of date from store and plans a session that
// also covers every stand known to the venue.
func (p *Planner) Load(ctx context.Context, store reference.Store, date time.Time, width time.Duration) (*Session, error) {
	evs, err := store.Transactions(ctx, date)
	if err != nil {
		return nil, refErr("transactions", err)
	}
	locs, err := store.Locations(ctx)
	if err != nil {
		return nil, refErr("locations", err)
	}
	names := make([]string, 0, len(locs))
	for _, l := range locs {
		names = append(names, l.Name)
	}
	return p.Session(evs, width, names)
}

func refErr(op string, err error) error {
	if errors.Is(err, model.ErrReference) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", model.ErrReference, op, err)
}
