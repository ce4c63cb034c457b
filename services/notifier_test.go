package services

import (
	"context"
	"errors"
	"order-service/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingProducer struct{ calls int }

func (p *failingProducer) Publish(topic string, message []byte) error {
	p.calls++
	return errors.New("broker unreachable")
}

func (p *failingProducer) Close() error { return nil }

type failingSNS struct{ calls int }

func (s *failingSNS) Publish(_ context.Context, topicArn string, message []byte) error {
	s.calls++
	return errors.New("sns unreachable")
}

func TestEventNotifier_SinkFailuresAreSwallowed(t *testing.T) {
	producer := &failingProducer{}
	sns := &failingSNS{}
	n := NewEventNotifier(producer, "order.events", sns, "arn:aws:sns:us-east-1:000000000000:order-events")

	// Both sinks error; delivery is best-effort and must return normally.
	n.NotifyOrderEvent(context.Background(), models.OrderEvent{
		Type:    models.EventOrderPaid,
		OrderID: "7f8e0f6a-0000-0000-0000-000000000000",
		Status:  models.StatusPaid,
	})

	assert.Equal(t, 1, producer.calls)
	assert.Equal(t, 1, sns.calls)
}

func TestEventNotifier_SkipsUnconfiguredSinks(t *testing.T) {
	n := NewEventNotifier(nil, "", nil, "")

	n.NotifyOrderEvent(context.Background(), models.OrderEvent{Type: models.EventOrderShipping})
}
