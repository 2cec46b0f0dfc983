package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/standwait/core/metrics"
	"github.com/kilianp07/standwait/infra/logger"
)

// InfluxSink writes estimates and replay frames to an InfluxDB instance.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordWaitEstimates writes one wait_estimate point per stand.
func (s *InfluxSink) RecordWaitEstimates(evs []coremetrics.WaitEstimateEvent) error {
	if len(evs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := make([]*write.Point, 0, len(evs))
	for _, ev := range evs {
		e := ev.Estimate
		points = append(points, write.NewPointWithMeasurement("wait_estimate").
			AddTag("location", e.Location).
			AddTag("source", ev.Source).
			AddTag("traffic", string(e.Traffic)).
			AddField("lambda", round3(e.Lambda)).
			AddField("mu", round3(e.Mu)).
			AddField("servers", e.Servers).
			AddField("utilization", round3(e.Utilization)).
			AddField("wait_minutes", round3(e.WaitMinutes)).
			SetTime(ev.Time))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordSnapshot writes one replay_stand point per stand of the frame,
// stamped with the simulated time.
func (s *InfluxSink) RecordSnapshot(ev coremetrics.SnapshotEvent) error {
	if len(ev.Snapshot.Stands) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	points := make([]*write.Point, 0, len(ev.Snapshot.Stands))
	for _, st := range ev.Snapshot.Stands {
		points = append(points, write.NewPointWithMeasurement("replay_stand").
			AddTag("session_id", ev.SessionID).
			AddTag("location", st.Location).
			AddField("seq", ev.Seq).
			AddField("orders", st.OrdersInBucket).
			AddField("quantity", st.QuantityInBucket).
			AddField("utilization", round3(st.Utilization)).
			AddField("wait_minutes", round3(st.WaitMinutes)).
			AddField("crowd_index", round3(st.CrowdIndex)).
			SetTime(ev.Snapshot.SimulatedTime))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordSession writes a replay lifecycle point.
func (s *InfluxSink) RecordSession(ev coremetrics.SessionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("replay_session").
		AddTag("session_id", ev.SessionID).
		AddTag("kind", ev.Kind).
		AddTag("date", ev.Date).
		AddField("frames", ev.Frames).
		AddField("error", ev.Error).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRoute writes a route evaluation point.
func (s *InfluxSink) RecordRoute(ev coremetrics.RouteEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("route_evaluation").
		AddTag("zone_id", ev.ZoneID).
		AddTag("item", ev.Item).
		AddTag("preferred", ev.Preferred).
		AddTag("within_budget", strconv.FormatBool(ev.WithinBudget)).
		AddField("round_trip_minutes", round3(ev.RoundTripMinutes)).
		AddField("alternatives", ev.Alternatives).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
