package events

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

	"github.com/yeremiapane/food-delivery/models"
)

type failing struct{}

type collect struct{ got []Event }

func (c *collect) Publish(_ context.Context, e Event) error {
	c.got = append(c.got, e)
	return nil
}

func (failing) Publish(context.Context, Event) error { return errors.New("down") }

func sample() Event {
	o := &models.Order{ID: 7, RestaurantID: 3, ClientID: 9, Status: models.StatusPreparing}
	return FromOrder(TypeOrderStatus, o, time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC))
}

func TestMultiPublishesToAll(t *testing.T) {
	a, b := &collect{}, &collect{}
	err := Multi{a, failing{}, b}.Publish(context.Background(), sample())
	assert.EqualError(t, err, "down")
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)

	assert.NoError(t, Multi{Nop{}, a}.Publish(context.Background(), sample()))
}

func TestKafkaPublisher(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "order-events", msg.Topic)
		key, _ := msg.Key.Encode()
		assert.Equal(t, "3", string(key))

		raw, _ := msg.Value.Encode()
		var e Event
		require.NoError(t, json.Unmarshal(raw, &e))
		assert.Equal(t, uint(7), e.OrderID)
		assert.Equal(t, models.StatusPreparing, e.Status)
		return nil
	})

	p := NewKafkaPublisherWithProducer(producer, "order-events")
	require.NoError(t, p.Publish(context.Background(), sample()))
	require.NoError(t, p.Close())
}

func TestKafkaPublisherError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewKafkaPublisherWithProducer(producer, "order-events")
	err := p.Publish(context.Background(), sample())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}
