package metrics

import (
	"time"

	"github.com/kilianp07/standwait/core/model"
)

// WaitEstimateEvent is one wait estimate produced for a stand.
type WaitEstimateEvent struct {
	Estimate model.WaitEstimate
	// Source names the operation that produced the estimate: "estimate" or "route".
	Source string
	Time   time.Time
}

// MetricsSink records wait estimates for observability purposes.
type MetricsSink interface {
	RecordWaitEstimates(evs []WaitEstimateEvent) error
}

// SnapshotEvent is one replay frame sent to a client.
type SnapshotEvent struct {
	SessionID string
	Date      string
	Seq       int
	Snapshot  model.Snapshot
	Time      time.Time
}

// SnapshotRecorder records replay snapshots.
type SnapshotRecorder interface {
	RecordSnapshot(ev SnapshotEvent) error
}

// SessionEvent captures a replay lifecycle transition.
type SessionEvent struct {
	SessionID string
	Date      string
	Kind      string
	Frames    int
	Error     string
	Time      time.Time
}

// SessionRecorder records replay lifecycle transitions.
type SessionRecorder interface {
	RecordSession(ev SessionEvent) error
}

// RouteEvent summarizes one route evaluation.
type RouteEvent struct {
	ZoneID           string
	Item             string
	Preferred        string
	RoundTripMinutes float64
	WithinBudget     bool
	Alternatives     int
	Time             time.Time
}

// RouteRecorder records route evaluations.
type RouteRecorder interface {
	RecordRoute(ev RouteEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordWaitEstimates([]WaitEstimateEvent) error { return nil }
func (NopSink) RecordSnapshot(SnapshotEvent) error            { return nil }
func (NopSink) RecordSession(SessionEvent) error              { return nil }
func (NopSink) RecordRoute(RouteEvent) error                  { return nil }
