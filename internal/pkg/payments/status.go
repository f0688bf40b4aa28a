package payments

import (
	"strings"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
)

// MapPaymentStatus translates a provider payment status to a local order
// status. The mapping is total and idempotent: unknown statuses map to
// pending, and reapplying any provider status yields the same local status.
func MapPaymentStatus(providerStatus string) string {
	switch strings.ToLower(strings.TrimSpace(providerStatus)) {
	case "approved":
		return models.OrderStatusPaid
	case "rejected", "cancelled":
		return models.OrderStatusCancelled
	case "expired":
		return models.OrderStatusExpired
	default:
		return models.OrderStatusPending
	}
}
