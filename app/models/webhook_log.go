package models

import "time"

const (
	WebhookStatusSuccess = "success"
	WebhookStatusFailed  = "failed"
)

// Webhook event type tags used by the payment handlers.
const (
	WebhookEventPayment             = "payment"
	WebhookEventPaymentIgnored      = "payment_ignored"
	WebhookEventPaymentOrphan       = "payment_orphan"
	WebhookEventPaymentFetchFailed  = "payment_fetch_failed"
	WebhookEventPaymentUpdateFailed = "payment_update_failed"
	WebhookEventSubscription        = "subscription_payment"
)

// WebhookLog is an append-only audit record of webhook traffic. Rows are
// never updated or deleted; the table exists purely for diagnostics and
// manual reconciliation of orphan payments.
type WebhookLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventType string    `gorm:"type:varchar(100);not null;index" json:"event_type"`
	Payload   string    `gorm:"type:longtext" json:"payload"`
	Response  string    `gorm:"type:longtext" json:"response"`
	Status    string    `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
