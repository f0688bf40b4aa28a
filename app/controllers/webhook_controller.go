package controllers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/database"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/metrics/counter"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/payments"
)

// paymentService is swappable so webhook handlers can be tested without a
// database or the live provider.
var paymentService = func() paymentHandler {
	return payments.NewServiceFromDB(database.GetDB())
}

type paymentHandler interface {
	HandlePaymentNotification(ctx context.Context, rawPayload string, n payments.Notification, studioID uint) (*payments.ReconcileResult, error)
	HandleSubscriptionNotification(ctx context.Context, rawPayload string, n payments.Notification, studioID uint) (*payments.SubscriptionResult, error)
}

// HandleMercadoPagoWebhook receives payment notifications. The response code
// drives the provider's redelivery: 200 acknowledges, 400 rejects payloads
// that can never succeed, 500 asks for another delivery.
func HandleMercadoPagoWebhook(c *fiber.Ctx) error {
	raw := string(c.Body())

	var n payments.Notification
	if err := c.BodyParser(&n); err != nil {
		countWebhook("failed")
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid notification body")
	}

	result, err := paymentService().HandlePaymentNotification(c.Context(), raw, n, studioIDFromQuery(c))
	if err != nil {
		countWebhook("failed")
		if errors.Is(err, payments.ErrMalformedNotification) {
			return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
		}
		log.Errorf("payment webhook processing failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Webhook processing failed")
	}

	countWebhook("success")

	if result.Ignored || result.Orphan {
		return c.JSON(fiber.Map{"success": true})
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"orderId":   result.OrderID,
		"oldStatus": result.OldStatus,
		"newStatus": result.NewStatus,
	})
}

// HandleSubscriptionWebhook receives subscription payment notifications.
func HandleSubscriptionWebhook(c *fiber.Ctx) error {
	raw := string(c.Body())

	var n payments.Notification
	if err := c.BodyParser(&n); err != nil {
		countWebhook("failed")
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid notification body")
	}

	result, err := paymentService().HandleSubscriptionNotification(c.Context(), raw, n, studioIDFromQuery(c))
	if err != nil {
		countWebhook("failed")
		if errors.Is(err, payments.ErrMalformedNotification) {
			return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
		}
		log.Errorf("subscription webhook processing failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Webhook processing failed")
	}

	countWebhook("success")

	if result.Ignored {
		return c.JSON(fiber.Map{"success": true})
	}
	return c.JSON(fiber.Map{
		"success":        true,
		"subscriptionId": result.SubscriptionID,
		"plan":           result.Plan,
		"status":         result.Status,
	})
}

// studioIDFromQuery reads the ?studio= hint the checkout flow embeds into the
// registered notification URL.
func studioIDFromQuery(c *fiber.Ctx) uint {
	v := strings.TrimSpace(c.Query("studio"))
	if v == "" {
		return 0
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

func countWebhook(status string) {
	if err := counter.AddWebhookResult(status); err != nil {
		log.Warnf("webhook result counter failed: %v", err)
	}
}
