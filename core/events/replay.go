package events

import (
	"time"

	"github.com/kilianp07/standwait/core/model"
)

// Kind names a replay lifecycle transition.
type Kind string

const (
	KindStarted   Kind = "started"
	KindTick      Kind = "tick"
	KindCompleted Kind = "completed"
	KindCancelled Kind = "cancelled"
)

// ReplayEvent is published by a replay stream. Snapshot is set for ticks only.
type ReplayEvent struct {
	Kind      Kind
	SessionID string
	Date      string
	Seq       int
	Total     int
	Snapshot  *model.Snapshot
	Err       error
	At        time.Time
}

// Publisher accepts replay events. *eventbus.TypedBus[ReplayEvent] satisfies it.
type Publisher interface {
	Publish(ReplayEvent)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(ReplayEvent) {}
