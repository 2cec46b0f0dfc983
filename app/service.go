package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/standwait/api"
	"github.com/kilianp07/standwait/config"
	"github.com/kilianp07/standwait/core/capacity"
	"github.com/kilianp07/standwait/core/events"
	coremetrics "github.com/kilianp07/standwait/core/metrics"
	"github.com/kilianp07/standwait/core/monitoring"
	"github.com/kilianp07/standwait/core/queue"
	"github.com/kilianp07/standwait/core/recommend"
	"github.com/kilianp07/standwait/core/reference"
	"github.com/kilianp07/standwait/core/replay"
	"github.com/kilianp07/standwait/infra/kafka"
	"github.com/kilianp07/standwait/infra/logger"
	"github.com/kilianp07/standwait/infra/metrics"
	"github.com/kilianp07/standwait/infra/mqtt"
	"github.com/kilianp07/standwait/internal/eventbus"
)

// Service wires the reference store, the estimation engine, the replay
// planner and every optional output.
type Service struct {
	cfg     *config.Config
	Store   reference.Store
	Engine  *recommend.Engine
	Planner *replay.Planner
	Bus     *eventbus.TypedBus[events.ReplayEvent]
	Sink    coremetrics.MetricsSink

	mqtt    *mqtt.Publisher
	kafka   *kafka.Publisher
	closers []func() error
	log     logger.Logger
}

// New creates a Service from the configuration.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	store, closeStore, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("reference store: %w", err)
	}
	svc := &Service{cfg: cfg, Store: store, log: logg, closers: []func() error{closeStore}}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	svc.Sink = sink

	est := queue.NewEstimator(cfg.Queue)
	inf := capacity.New(cfg.Capacity)
	svc.Engine = recommend.NewEngine(store, est, inf, cfg.Recommend,
		recommend.WithMetrics(sink),
		recommend.WithLogger(logger.New("recommend")),
	)
	svc.Planner = replay.NewPlanner(cfg.Replay, est, inf)
	svc.Bus = eventbus.NewTyped[events.ReplayEvent]()

	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.mqtt = pub
	}
	if cfg.Kafka.Enabled {
		pub, err := kafka.NewPublisher(cfg.Kafka)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("kafka publisher: %w", err)
		}
		svc.kafka = pub
	}
	return svc, nil
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	h := api.NewHandler(s.Engine, s.Planner, s.Store, s.Bus, logger.New("api"))
	return api.NewRouter(h, logger.New("http"))
}

// StartOutputs mirrors replay events to metrics and the configured brokers
// until ctx is canceled.
func (s *Service) StartOutputs(ctx context.Context) {
	metrics.StartEventCollector(ctx, s.Bus, s.Sink)
	if s.mqtt != nil {
		s.mqtt.Start(ctx, s.Bus)
	}
	if s.kafka != nil {
		s.kafka.Start(ctx, s.Bus)
	}
}

// Run serves the API and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.StartOutputs(ctx)
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		monitoring.Go(func() {
			if err := metrics.StartPromServer(ctx, addr, nil); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		})
	}

	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: time.Duration(s.cfg.Server.ReadHeaderTimeoutSec) * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Infof("serving API on %s", s.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.Server.ShutdownTimeoutSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Infof("server exited")
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.Bus != nil {
		s.Bus.Close()
	}
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	var errs []error
	if s.kafka != nil {
		errs = append(errs, s.kafka.Close())
	}
	if c, ok := s.Sink.(interface{ Close() }); ok {
		c.Close()
	}
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
