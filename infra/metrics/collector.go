package metrics

import (
	"context"

	"github.com/kilianp07/standwait/core/events"
	coremetrics "github.com/kilianp07/standwait/core/metrics"
	"github.com/kilianp07/standwait/internal/eventbus"
)

// StartEventCollector subscribes to replay events and records snapshots and
// session transitions on sink. It stops when ctx is canceled or the bus closes.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.ReplayEvent], sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe(eventbus.WithBuffer(64))
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(sink, ev)
			}
		}
	}()
}

func record(sink coremetrics.MetricsSink, ev events.ReplayEvent) {
	if ev.Kind == events.KindTick && ev.Snapshot != nil {
		if r, ok := sink.(coremetrics.SnapshotRecorder); ok {
			_ = r.RecordSnapshot(coremetrics.SnapshotEvent{
				SessionID: ev.SessionID,
				Date:      ev.Date,
				Seq:       ev.Seq,
				Snapshot:  *ev.Snapshot,
				Time:      ev.At,
			})
		}
		return
	}
	if r, ok := sink.(coremetrics.SessionRecorder); ok {
		errStr := ""
		if ev.Err != nil {
			errStr = ev.Err.Error()
		}
		_ = r.RecordSession(coremetrics.SessionEvent{
			SessionID: ev.SessionID,
			Date:      ev.Date,
			Kind:      string(ev.Kind),
			Frames:    ev.Seq + 1,
			Error:     errStr,
			Time:      ev.At,
		})
	}
}
