package services

import (
	"context"
	"encoding/json"
	"log"
	"order-service/kafka"
	"order-service/models"
	"time"

	aws_pkg "order-service/pkg/aws"
)

// Notifier delivers order lifecycle events to downstream channels. Delivery is
// best-effort: a failed notification is logged and never fails the transition
// that triggered it.
type Notifier interface {
	NotifyOrderEvent(ctx context.Context, evt models.OrderEvent)
}

type EventNotifier struct {
	producer    kafka.ProducerAPI
	kafkaTopic  string
	snsClient   aws_pkg.SNSPublisher
	snsTopicArn string
}

func NewEventNotifier(producer kafka.ProducerAPI, kafkaTopic string, snsClient aws_pkg.SNSPublisher, snsTopicArn string) *EventNotifier {
	return &EventNotifier{
		producer:    producer,
		kafkaTopic:  kafkaTopic,
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
	}
}

func (n *EventNotifier) NotifyOrderEvent(ctx context.Context, evt models.OrderEvent) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		log.Printf("[Notifier] failed to marshal event type=%s order=%s: %v", evt.Type, evt.OrderID, err)
		return
	}

	if n.producer != nil && n.kafkaTopic != "" {
		if err := n.producer.Publish(n.kafkaTopic, payload); err != nil {
			log.Printf("[Notifier] kafka publish failed type=%s order=%s: %v", evt.Type, evt.OrderID, err)
		}
	}

	if n.snsClient != nil && n.snsTopicArn != "" {
		if err := n.snsClient.Publish(ctx, n.snsTopicArn, payload); err != nil {
			log.Printf("[Notifier] SNS publish failed type=%s order=%s: %v", evt.Type, evt.OrderID, err)
		}
	}
}
