package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus values an order moves through on its way to delivery.
const (
	StatusNegotiating     = "negotiating"
	StatusConfirmed       = "confirmed"
	StatusPendingPayment  = "pending_payment"
	StatusPaymentUploaded = "payment_uploaded"
	StatusPaid            = "paid"
	StatusShipping        = "shipping"
	StatusDelivered       = "delivered"
	StatusCancelled       = "cancelled"
)

// AllStatuses is the full set, used for stats and override validation.
var AllStatuses = []string{
	StatusNegotiating,
	StatusConfirmed,
	StatusPendingPayment,
	StatusPaymentUploaded,
	StatusPaid,
	StatusShipping,
	StatusDelivered,
	StatusCancelled,
}

type Order struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID             uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Status             string    `gorm:"type:varchar(20);not null;default:'negotiating';index" json:"status"`
	TotalOriginalCents int64     `gorm:"not null" json:"total_original_cents"`
	NegotiatedCents    *int64    `json:"negotiated_cents,omitempty"`
	FinalCents         *int64    `json:"final_cents,omitempty"`
	Notes              *string   `gorm:"type:text" json:"notes,omitempty"`
	TrackingInfo       *string   `gorm:"type:text" json:"tracking_info,omitempty"`
	EstimatedDelivery  *string   `gorm:"type:varchar(100)" json:"estimated_delivery,omitempty"`

	// Version is bumped on every state-mutating write; stale writers get a conflict.
	Version int64 `gorm:"not null;default:1" json:"version"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items"`
	Payments   []Payment   `gorm:"foreignKey:OrderID" json:"payments,omitempty"`
}

type OrderItem struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	CarID   uuid.UUID `gorm:"type:uuid;not null" json:"car_id"`

	// Catalog snapshot taken at order creation; the car may change later.
	CarTitle    string `gorm:"type:varchar(255);not null" json:"car_title"`
	CarYear     int    `gorm:"not null" json:"car_year"`
	CarImageURL string `gorm:"type:varchar(1024)" json:"car_image_url"`

	OriginalPriceCents int64  `gorm:"not null" json:"original_price_cents"`
	NegotiatedCents    *int64 `json:"negotiated_cents,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Payment is one submitted proof-of-payment for an order. Orders can collect
// several (retried uploads, partial payments); each is verified independently.
type Payment struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	EvidenceKey       string `gorm:"type:varchar(512);not null" json:"evidence_key"`
	EvidenceMimeType  string `gorm:"type:varchar(100);not null" json:"evidence_mime_type"`
	EvidenceSizeBytes int64  `gorm:"not null" json:"evidence_size_bytes"`

	AmountClaimedCents *int64 `json:"amount_claimed_cents,omitempty"`

	Verified   bool       `gorm:"not null;default:false;index" json:"verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	VerifiedBy *uuid.UUID `gorm:"type:uuid" json:"verified_by,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// OrderStatusLog records every status change, including raw admin overrides.
type OrderStatusLog struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	FromStatus string    `gorm:"type:varchar(20);not null" json:"from_status"`
	ToStatus   string    `gorm:"type:varchar(20);not null" json:"to_status"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null" json:"actor_id"`
	Note       string    `gorm:"type:text" json:"note,omitempty"`
	Override   bool      `gorm:"not null;default:false" json:"override"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
