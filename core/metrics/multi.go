package metrics

// MultiSink fans records out to several sinks. Optional recorders are
// forwarded only to sinks implementing them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink returns a MultiSink over sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordWaitEstimates forwards to all sinks, returning the first error encountered.
func (m *MultiSink) RecordWaitEstimates(evs []WaitEstimateEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordWaitEstimates(evs); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) RecordSnapshot(ev SnapshotEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SnapshotRecorder); ok {
			if err := rec.RecordSnapshot(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MultiSink) RecordSession(ev SessionEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SessionRecorder); ok {
			if err := rec.RecordSession(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MultiSink) RecordRoute(ev RouteEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RouteRecorder); ok {
			if err := rec.RecordRoute(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
