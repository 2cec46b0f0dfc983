package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/standwait/core/events"
	"github.com/kilianp07/standwait/core/model"
	"github.com/kilianp07/standwait/internal/eventbus"
)

func TestPublishEncodesEvent(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "replay" {
			return errors.New("wrong topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil || string(key) != "s1" {
			return errors.New("wrong key")
		}
		raw, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var m events.Message
		if err := json.Unmarshal(raw, &m); err != nil {
			return err
		}
		if m.Kind != events.KindTick || m.Snapshot == nil || m.Snapshot.Index != 1 {
			return errors.New("unexpected payload")
		}
		return nil
	})

	p := NewPublisherWithProducer(sp, "replay")
	err := p.Publish(context.Background(), events.ReplayEvent{
		Kind: events.KindTick, SessionID: "s1", Seq: 1, Snapshot: &model.Snapshot{Index: 1},
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestPublishFailure(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewPublisherWithProducer(sp, "replay")
	err := p.Publish(context.Background(), events.ReplayEvent{Kind: events.KindStarted, SessionID: "s1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestPublishAfterClose(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	p := NewPublisherWithProducer(sp, "replay")
	require.NoError(t, p.Close())
	assert.Error(t, p.Publish(context.Background(), events.ReplayEvent{}))
}

func TestStartMirrorsBus(t *testing.T) {
	sent := make(chan struct{}, 2)
	check := func([]byte) error {
		sent <- struct{}{}
		return nil
	}
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(check)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(check)

	p := NewPublisherWithProducer(sp, "replay")
	bus := eventbus.NewTyped[events.ReplayEvent]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx, bus)

	bus.Publish(events.ReplayEvent{Kind: events.KindStarted, SessionID: "s2"})
	bus.Publish(events.ReplayEvent{Kind: events.KindCompleted, SessionID: "s2"})

	for i := 0; i < 2; i++ {
		select {
		case <-sent:
		case <-time.After(time.Second):
			t.Fatalf("event %d not mirrored", i)
		}
	}
	cancel()
	bus.Close()
}

func TestConfig(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, "standwait.replay", c.Topic)
	assert.NoError(t, c.Validate())

	c.Enabled = true
	assert.Error(t, c.Validate())

	c.Brokers = " k1:9092, ,k2:9092"
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.BrokerList())
	assert.NoError(t, c.Validate())

	sc := c.SaramaConfig()
	assert.True(t, sc.Producer.Return.Successes)
	assert.Equal(t, sarama.WaitForAll, sc.Producer.RequiredAcks)
}
