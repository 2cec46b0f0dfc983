package replay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kilianp07/standwait/core/events"
	"github.com/kilianp07/standwait/core/model"
	"github.com/kilianp07/standwait/internal/eventbus"
)

func TestStreamerRunsToCompletion(t *testing.T) {
	s := newSession(t)
	bus := eventbus.NewTyped[events.ReplayEvent]()
	sub := bus.Subscribe(eventbus.WithBuffer(16))
	defer bus.Close()

	st := &Streamer{Interval: time.Millisecond, Date: "2024-04-05", Publisher: bus}
	var seqs []int
	err := st.Run(context.Background(), s, func(_ context.Context, seq int, _ model.Snapshot) error {
		seqs = append(seqs, seq)
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(seqs) != s.Total() {
		t.Fatalf("expected %d frames got %d", s.Total(), len(seqs))
	}
	if s.State() != StateExhausted {
		t.Fatalf("expected exhausted got %s", s.State())
	}
	var kinds []events.Kind
	for len(sub) > 0 {
		kinds = append(kinds, (<-sub).Kind)
	}
	if kinds[0] != events.KindStarted || kinds[len(kinds)-1] != events.KindCompleted {
		t.Fatalf("unexpected event order %v", kinds)
	}
}

func TestStreamerCancelledByContext(t *testing.T) {
	s := newSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	st := &Streamer{Interval: time.Hour}
	err := st.Run(ctx, s, func(context.Context, int, model.Snapshot) error {
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled got %v", err)
	}
	if s.State() != StateCancelled {
		t.Fatalf("expected cancelled got %s", s.State())
	}
}

func TestStreamerEmitErrorCancels(t *testing.T) {
	s := newSession(t)
	gone := errors.New("client gone")
	st := &Streamer{Interval: time.Millisecond}
	err := st.Run(context.Background(), s, func(context.Context, int, model.Snapshot) error {
		return gone
	})
	if !errors.Is(err, gone) {
		t.Fatalf("expected emit error got %v", err)
	}
	if s.State() != StateCancelled {
		t.Fatalf("expected cancelled got %s", s.State())
	}
}

func TestStreamerLastEmitFailureMatchesState(t *testing.T) {
	s := newSession(t)
	bus := eventbus.NewTyped[events.ReplayEvent]()
	sub := bus.Subscribe(eventbus.WithBuffer(16))
	defer bus.Close()

	gone := errors.New("client gone")
	st := &Streamer{Interval: time.Millisecond, Publisher: bus}
	err := st.Run(context.Background(), s, func(_ context.Context, seq int, _ model.Snapshot) error {
		if seq == s.Total()-1 {
			return gone
		}
		return nil
	})
	if !errors.Is(err, gone) {
		t.Fatalf("expected emit error got %v", err)
	}
	if s.State() != StateExhausted {
		t.Fatalf("expected exhausted got %s", s.State())
	}
	var last events.ReplayEvent
	for len(sub) > 0 {
		last = <-sub
		if last.Kind == events.KindCancelled {
			t.Fatalf("cancelled event published for an exhausted session")
		}
	}
	if last.Kind != events.KindCompleted || !errors.Is(last.Err, gone) {
		t.Fatalf("unexpected closing event %+v", last)
	}
}
