package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
	OrderStatusExpired   = "expired"
)

// Order is a client photo-purchase attempt. PaymentIntentID is set by
// provider-side payment creation and is the join key the payment webhook
// uses to locate the order; ExternalReference is the normalized secondary
// lookup key written at creation time.
type Order struct {
	ID                string         `gorm:"type:char(36);primaryKey" json:"id"`
	EventID           uint           `gorm:"index;not null" json:"event_id"`
	Event             SessionEvent   `gorm:"foreignKey:EventID" json:"event,omitempty"`
	BuyerEmail        string         `gorm:"type:varchar(200);index" json:"buyer_email"`
	PhotoIDs          JSON           `gorm:"type:json" json:"photo_ids"`
	TotalAmount       float64        `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status            string         `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	PaymentIntentID   string         `gorm:"type:varchar(191);index" json:"payment_intent_id"`
	ExternalReference string         `gorm:"type:varchar(191);index" json:"external_reference"`
	Metadata          JSON           `gorm:"type:json" json:"metadata"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID primary key and normalizes the reference.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	o.ExternalReference = NormalizeExternalReference(o.ExternalReference)
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	return nil
}

// NormalizeExternalReference canonicalizes a provider external reference so
// lookups are exact instead of substring scans.
func NormalizeExternalReference(ref string) string {
	return strings.ToUpper(strings.TrimSpace(ref))
}

// IsFinal reports whether the order reached a terminal status.
func (o *Order) IsFinal() bool {
	switch o.Status {
	case OrderStatusPaid, OrderStatusCancelled, OrderStatusExpired:
		return true
	default:
		return false
	}
}
