// Package kafka mirrors replay events to a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"github.com/kilianp07/standwait/core/events"
	"github.com/kilianp07/standwait/core/monitoring"
	"github.com/kilianp07/standwait/infra/logger"
	"github.com/kilianp07/standwait/internal/eventbus"
)

// Config holds the producer settings.
type Config struct {
	Enabled        bool   `json:"enabled"`
	Brokers        string `json:"brokers"`
	Topic          string `json:"topic"`
	ClientID       string `json:"client_id"`
	MaxRetries     int    `json:"max_retries"`
	RetryBackoffMS int    `json:"retry_backoff_ms"`
	DialTimeoutSec int    `json:"dial_timeout_sec"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Topic == "" {
		c.Topic = "standwait.replay"
	}
	if c.ClientID == "" {
		c.ClientID = "standwait"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	if c.RetryBackoffMS <= 0 {
		c.RetryBackoffMS = 100
	}
	if c.DialTimeoutSec <= 0 {
		c.DialTimeoutSec = 30
	}
}

// Validate checks the settings when the producer is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if len(c.BrokerList()) == 0 {
		return fmt.Errorf("kafka: brokers are required")
	}
	if c.Topic == "" {
		return fmt.Errorf("kafka: topic is required")
	}
	return nil
}

// BrokerList splits the comma separated broker string.
func (c Config) BrokerList() []string {
	var out []string
	for _, b := range strings.Split(c.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// SaramaConfig builds the client configuration for a SyncProducer.
func (c Config) SaramaConfig() *sarama.Config {
	sc := sarama.NewConfig()
	sc.ClientID = c.ClientID
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = c.MaxRetries
	sc.Producer.Retry.Backoff = time.Duration(c.RetryBackoffMS) * time.Millisecond
	sc.Producer.Return.Successes = true
	sc.Net.DialTimeout = time.Duration(c.DialTimeoutSec) * time.Second
	sc.Net.ReadTimeout = time.Duration(c.DialTimeoutSec) * time.Second
	sc.Net.WriteTimeout = time.Duration(c.DialTimeoutSec) * time.Second
	return sc
}

// Publisher writes replay events keyed by session id so a session stays on
// one partition.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   logger.Logger
}

// NewPublisher connects a SyncProducer to the configured brokers.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	brokers := cfg.BrokerList()
	producer, err := sarama.NewSyncProducer(brokers, cfg.SaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	p := NewPublisherWithProducer(producer, cfg.Topic)
	p.logger.Infof("kafka producer connected to %v", brokers)
	return p, nil
}

// NewPublisherWithProducer wraps an existing producer.
func NewPublisherWithProducer(producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic, logger: logger.New("kafka_publisher")}
}

// Publish sends ev to the topic.
func (p *Publisher) Publish(_ context.Context, ev events.ReplayEvent) error {
	if p.producer == nil {
		return fmt.Errorf("kafka producer is closed")
	}
	payload, err := events.Encode(ev)
	if err != nil {
		return err
	}
	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.SessionID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("kind"), Value: []byte(ev.Kind)},
		},
	})
	if err != nil {
		tags := monitoring.ReplayTags("kafka", ev.SessionID, ev.Date)
		tags["topic"] = p.topic
		monitoring.CaptureException(err, tags)
		return fmt.Errorf("kafka send %s: %w", p.topic, err)
	}
	p.logger.Debugw("published replay event", map[string]any{
		"topic": p.topic, "partition": partition, "offset": offset, "kind": string(ev.Kind),
	})
	return nil
}

// Start mirrors every event on bus until ctx is canceled or the bus closes.
func (p *Publisher) Start(ctx context.Context, bus *eventbus.TypedBus[events.ReplayEvent]) {
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
				if err := p.Publish(ctx, ev); err != nil {
					p.logger.Warnf("dropping replay event %s/%d: %v", ev.SessionID, ev.Seq, err)
				}
			}
		}
	}()
}

// Close flushes and closes the producer.
func (p *Publisher) Close() error {
	if p.producer == nil {
		return nil
	}
	err := p.producer.Close()
	p.producer = nil
	return err
}
