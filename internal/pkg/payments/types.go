package payments

import (
	"context"
	"errors"

	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/mercadopago"
)

// Notification is the inbound webhook body the provider posts.
type Notification struct {
	Type string `json:"type"`
	Data struct {
		ID interface{} `json:"id"`
	} `json:"data"`
}

// Provider abstracts the payment processor API for the reconciliation flow.
type Provider interface {
	GetPayment(ctx context.Context, accessToken, paymentID string) (*mercadopago.PaymentDetail, error)
}

// ReconcileResult reports what a payment notification did.
type ReconcileResult struct {
	OrderID   string `json:"orderId,omitempty"`
	OldStatus string `json:"oldStatus,omitempty"`
	NewStatus string `json:"newStatus,omitempty"`
	Ignored   bool   `json:"ignored,omitempty"`
	Orphan    bool   `json:"orphan,omitempty"`
}

// SubscriptionResult reports what a subscription payment notification did.
type SubscriptionResult struct {
	SubscriptionID uint   `json:"subscriptionId,omitempty"`
	Plan           string `json:"plan,omitempty"`
	Status         string `json:"status,omitempty"`
	Ignored        bool   `json:"ignored,omitempty"`
}

// ErrMalformedNotification marks requests the provider must not redeliver.
var ErrMalformedNotification = errors.New("malformed payment notification")

// ErrNoCredentials is returned when no usable Mercado Pago credential can be
// resolved for a delivery.
var ErrNoCredentials = errors.New("no mercadopago credentials resolvable")
