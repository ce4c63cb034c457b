package models

import "time"

// OrderEvent is the payload published to Kafka/SNS when an order hits a
// notification-worthy status (paid, shipping).
type OrderEvent struct {
	Type           string    `json:"type"`
	OrderID        string    `json:"order_id"`
	UserID         string    `json:"user_id"`
	Status         string    `json:"status"`
	EffectiveCents int64     `json:"effective_cents"`
	Timestamp      time.Time `json:"timestamp"`
}

const (
	EventOrderPaid     = "order_paid"
	EventOrderShipping = "order_shipping"
)
