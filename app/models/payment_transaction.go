package models

import "time"

const (
	TransactionStatusPending  = "pending"
	TransactionStatusApproved = "approved"
	TransactionStatusRejected = "rejected"
)

// PaymentTransaction tracks a single provider charge for a subscription,
// keyed by the provider payment id so the webhook can update it in place.
type PaymentTransaction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index" json:"user_id"`
	SubscriptionID  uint      `gorm:"index" json:"subscription_id"`
	PaymentIntentID string    `gorm:"type:varchar(191);index;not null" json:"payment_intent_id"`
	Amount          float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status          string    `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
