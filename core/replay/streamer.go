package replay

import (
	"context"
	"time"

	"github.com/kilianp07/standwait/core/events"
	"github.com/kilianp07/standwait/core/logger"
	"github.com/kilianp07/standwait/core/model"
)

// EmitFunc delivers a snapshot to the client. A returned error ends the run.
type EmitFunc func(ctx context.Context, seq int, snap model.Snapshot) error

// Streamer paces a Session on a real-time ticker.
type Streamer struct {
	Interval  time.Duration
	Date      string
	Publisher events.Publisher
	Logger    logger.Logger
}

// Run starts the session, emits the first frame at once and one frame per
// tick after that. It returns nil once the session is exhausted. On context
// cancellation or emit failure the session is cancelled and the error is
// returned; the closing event carries the error and matches the final state.
// The ticker is stopped on every path.
func (st *Streamer) Run(ctx context.Context, s *Session, emit EmitFunc) error {
	pub := st.Publisher
	if pub == nil {
		pub = events.NopPublisher{}
	}
	if err := s.Start(); err != nil {
		return err
	}
	pub.Publish(st.event(events.KindStarted, s, 0, nil, nil))
	if st.Logger != nil {
		st.Logger.Infof("replay %s started: %d frames every %s", s.ID(), s.Total(), st.Interval)
	}

	interval := st.Interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := ctx.Err(); err != nil {
		s.Cancel()
		pub.Publish(st.event(events.KindCancelled, s, 0, nil, err))
		return err
	}
	for {
		snap, seq, err := s.Tick()
		if err != nil {
			return err
		}
		if err := emit(ctx, seq, snap); err != nil {
			s.Cancel()
			pub.Publish(st.event(endKind(s), s, seq, nil, err))
			return err
		}
		pub.Publish(st.event(events.KindTick, s, seq, &snap, nil))
		if s.State() == StateExhausted {
			pub.Publish(st.event(events.KindCompleted, s, seq, nil, nil))
			if st.Logger != nil {
				st.Logger.Infof("replay %s complete", s.ID())
			}
			return nil
		}
		select {
		case <-ctx.Done():
			s.Cancel()
			pub.Publish(st.event(events.KindCancelled, s, seq, nil, ctx.Err()))
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// endKind reports how a session ended once Cancel has been applied. A failed
// emit of the last frame leaves the session Exhausted.
func endKind(s *Session) events.Kind {
	if s.State() == StateExhausted {
		return events.KindCompleted
	}
	return events.KindCancelled
}

func (st *Streamer) event(kind events.Kind, s *Session, seq int, snap *model.Snapshot, err error) events.ReplayEvent {
	return events.ReplayEvent{
		Kind:      kind,
		SessionID: s.ID(),
		Date:      st.Date,
		Seq:       seq,
		Total:     s.Total(),
		Snapshot:  snap,
		Err:       err,
		At:        time.Now(),
	}
}
