package payments

import (
	"testing"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
)

func TestMapPaymentStatus_Total(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "approved", want: models.OrderStatusPaid},
		{in: "rejected", want: models.OrderStatusCancelled},
		{in: "cancelled", want: models.OrderStatusCancelled},
		{in: "expired", want: models.OrderStatusExpired},
		{in: "in_process", want: models.OrderStatusPending},
		{in: "charged_back", want: models.OrderStatusPending},
		{in: "", want: models.OrderStatusPending},
		{in: "APPROVED", want: models.OrderStatusPaid},
		{in: " approved ", want: models.OrderStatusPaid},
	}

	for _, tt := range tests {
		if got := MapPaymentStatus(tt.in); got != tt.want {
			t.Fatalf("MapPaymentStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMapPaymentStatus_Idempotent(t *testing.T) {
	for _, status := range []string{"approved", "rejected", "cancelled", "expired", "other"} {
		first := MapPaymentStatus(status)
		second := MapPaymentStatus(status)
		if first != second {
			t.Fatalf("MapPaymentStatus(%q) not deterministic: %q vs %q", status, first, second)
		}
	}
}
