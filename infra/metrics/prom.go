package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/standwait/core/metrics"
)

// PromSink exposes wait estimates and replay activity as Prometheus metrics.
type PromSink struct {
	wait        *prometheus.GaugeVec
	utilization *prometheus.GaugeVec
	estimates   *prometheus.CounterVec
	replayWait  *prometheus.GaugeVec
	snapshots   prometheus.Counter
	sessions    *prometheus.CounterVec
	roundTrip   *prometheus.HistogramVec
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The /metrics endpoint is started separately with StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers the metrics on reg. A nil registerer
// defaults to the global one. Collectors already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.wait, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "standwait_wait_minutes",
		Help: "Latest estimated wait per stand",
	}, []string{"location", "source"})); err != nil {
		return nil, err
	}
	if s.utilization, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "standwait_utilization_ratio",
		Help: "Latest estimated utilization per stand",
	}, []string{"location"})); err != nil {
		return nil, err
	}
	if s.estimates, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "standwait_estimates_total",
		Help: "Number of wait estimates computed",
	}, []string{"location", "traffic"})); err != nil {
		return nil, err
	}
	if s.replayWait, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "standwait_replay_wait_minutes",
		Help: "Simulated wait per stand in the latest replay frame",
	}, []string{"location"})); err != nil {
		return nil, err
	}
	if s.snapshots, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "standwait_replay_snapshots_total",
		Help: "Number of replay snapshots emitted",
	})); err != nil {
		return nil, err
	}
	if s.sessions, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "standwait_replay_sessions_total",
		Help: "Replay session transitions",
	}, []string{"kind"})); err != nil {
		return nil, err
	}
	if s.roundTrip, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "standwait_route_round_trip_minutes",
		Help:    "Round trip of the preferred stand in route evaluations",
		Buckets: []float64{2, 4, 6, 8, 10, 15, 20, 30, 45, 60},
	}, []string{"within_budget"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordWaitEstimates updates the per-stand gauges.
func (s *PromSink) RecordWaitEstimates(evs []coremetrics.WaitEstimateEvent) error {
	for _, ev := range evs {
		e := ev.Estimate
		s.wait.WithLabelValues(e.Location, ev.Source).Set(e.WaitMinutes)
		s.utilization.WithLabelValues(e.Location).Set(e.Utilization)
		s.estimates.WithLabelValues(e.Location, string(e.Traffic)).Inc()
	}
	return nil
}

func (s *PromSink) RecordSnapshot(ev coremetrics.SnapshotEvent) error {
	s.snapshots.Inc()
	for _, st := range ev.Snapshot.Stands {
		s.replayWait.WithLabelValues(st.Location).Set(st.WaitMinutes)
	}
	return nil
}

func (s *PromSink) RecordSession(ev coremetrics.SessionEvent) error {
	s.sessions.WithLabelValues(ev.Kind).Inc()
	return nil
}

func (s *PromSink) RecordRoute(ev coremetrics.RouteEvent) error {
	s.roundTrip.WithLabelValues(strconv.FormatBool(ev.WithinBudget)).Observe(ev.RoundTripMinutes)
	return nil
}
