package models

import "time"

const (
	PlanTrial  = "trial"
	PlanPaid   = "paid"
	PlanMaster = "master"
)

const (
	SubscriptionStatusActive         = "active"
	SubscriptionStatusExpired        = "expired"
	SubscriptionStatusCancelled      = "cancelled"
	SubscriptionStatusPendingPayment = "pending_payment"
)

// Subscription holds per-photographer billing state. The subscription
// payment webhook mutates it on approval.
type Subscription struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	Plan              string     `gorm:"type:varchar(32);not null;default:'trial'" json:"plan"`
	Status            string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	TrialStartsAt     *time.Time `gorm:"type:timestamp;default:null" json:"trial_starts_at,omitempty"`
	TrialEndsAt       *time.Time `gorm:"type:timestamp;default:null" json:"trial_ends_at,omitempty"`
	ExpiresAt         *time.Time `gorm:"type:timestamp;default:null" json:"expires_at,omitempty"`
	LastPaymentAt     *time.Time `gorm:"type:timestamp;default:null" json:"last_payment_at,omitempty"`
	LastPaymentAmount float64    `gorm:"type:decimal(10,2);default:0" json:"last_payment_amount"`
	PaymentIntentID   string     `gorm:"type:varchar(191);index" json:"payment_intent_id"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// InTrialWindow reports whether now falls inside the trial window.
func (s *Subscription) InTrialWindow(now time.Time) bool {
	if s.TrialStartsAt == nil || s.TrialEndsAt == nil {
		return false
	}
	return !now.Before(*s.TrialStartsAt) && now.Before(*s.TrialEndsAt)
}

// IsEntitled reports whether the subscription currently grants access.
func (s *Subscription) IsEntitled(now time.Time) bool {
	if s.Status != SubscriptionStatusActive {
		return false
	}
	if s.Plan == PlanTrial {
		return s.InTrialWindow(now)
	}
	if s.ExpiresAt != nil && now.After(*s.ExpiresAt) {
		return false
	}
	return true
}
