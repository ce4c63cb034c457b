package kafka

import (
	"context"
	"log"

	"github.com/segmentio/kafka-go"
)

// ProducerAPI is the slice of the producer that services depend on.
type ProducerAPI interface {
	Publish(topic string, message []byte) error
	Close() error
}

type Producer struct {
	writer *kafka.Writer
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	// Topic is set per message so one writer can serve every event topic.
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	log.Printf("[OrderService][KafkaProducer] initialized topic=%s brokers=%v", topic, brokers)
	return &Producer{writer: w, topic: topic}
}

func (p *Producer) Publish(topic string, message []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Value: message,
	}
	if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
		log.Printf("[OrderService][KafkaProducer] publish failed topic=%s err=%v", topic, err)
		return err
	}
	return nil
}

func (p *Producer) Close() error {
	log.Printf("[OrderService][KafkaProducer] closing writer topic=%s", p.topic)
	return p.writer.Close()
}
