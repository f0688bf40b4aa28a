package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
	"github.com/StudioFlowHQ/StudioFlow/app/repository"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/database"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/env"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/mercadopago"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/plans"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/usercontext"
)

type connectPaymentAccountRequest struct {
	AccessToken       string `json:"access_token"`
	ExternalAccountID string `json:"external_account_id"`
}

// HandleSubscriptionStatus returns the photographer's billing state.
func HandleSubscriptionStatus(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	sub, err := repository.GetGlobalRepositories().Subscription.GetOrCreateTrial(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load subscription")
	}

	limits := plans.LimitsFor(plans.Normalize(sub.Plan))
	return c.JSON(fiber.Map{
		"plan":            sub.Plan,
		"status":          sub.Status,
		"entitled":        sub.IsEntitled(time.Now()),
		"trial_ends_at":   formatTimePtr(sub.TrialEndsAt),
		"expires_at":      formatTimePtr(sub.ExpiresAt),
		"last_payment_at": formatTimePtr(sub.LastPaymentAt),
		"limits": fiber.Map{
			"max_active_albums": limits.MaxActiveAlbums,
			"max_clients":       limits.MaxClients,
			"ftp_import":        limits.FTPImport,
		},
	})
}

// HandleSubscriptionCheckout creates a provider checkout for the paid plan.
// The pending transaction row is updated by the subscription webhook once the
// payment is approved.
func HandleSubscriptionCheckout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repos := repository.GetGlobalRepositories()

	token := strings.TrimSpace(env.GetEnv("MERCADOPAGO_PLATFORM_ACCESS_TOKEN", ""))
	if token == "" {
		return jsonError(c, fiber.StatusServiceUnavailable, "billing_unavailable", "Subscription billing is not configured")
	}

	sub, err := repos.Subscription.GetOrCreateTrial(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load subscription")
	}

	price := subscriptionPrice()
	tx := &models.PaymentTransaction{
		UserID:         userCtx.UserID,
		SubscriptionID: sub.ID,
		Amount:         price,
		Status:         models.TransactionStatusPending,
	}

	user, err := repos.User.GetByID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load account")
	}

	if err := database.GetDB().Create(tx).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to record transaction")
	}

	preference, err := mercadopago.NewClientFromEnv().CreatePreference(c.Context(), token, mercadopago.PreferenceInput{
		Items: []mercadopago.PreferenceItem{{
			Title:     "Assinatura StudioFlow - plano mensal",
			Quantity:  1,
			UnitPrice: price,
		}},
		ExternalReference: "SUB-" + strconv.FormatUint(uint64(sub.ID), 10),
		PayerEmail:        user.Email,
		NotificationURL:   subscriptionWebhookURL(),
		Metadata: map[string]interface{}{
			"type":            "subscription_payment",
			"subscription_id": strconv.FormatUint(uint64(sub.ID), 10),
			"transaction_id":  strconv.FormatUint(uint64(tx.ID), 10),
		},
	})
	if err != nil {
		log.Errorf("subscription preference create for user %d failed: %v", userCtx.UserID, err)
		return jsonError(c, fiber.StatusBadGateway, "provider_unavailable", "Payment provider request failed")
	}

	// Keyed by the preference id until the webhook learns the payment id.
	tx.PaymentIntentID = preference.ID
	if err := database.GetDB().Save(tx).Error; err != nil {
		log.Warnf("transaction %d reference update failed: %v", tx.ID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"transaction_id": tx.ID,
		"amount":         price,
		"init_point":     preference.InitPoint,
	})
}

// HandleSubscriptionCancel stops the subscription at the photographer's
// request. Already-granted paid time is not revoked.
func HandleSubscriptionCancel(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repos := repository.GetGlobalRepositories()

	sub, err := repos.Subscription.GetByUserID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "not_found", "No subscription found")
	}

	if sub.Status != models.SubscriptionStatusCancelled {
		sub.Status = models.SubscriptionStatusCancelled
		if err := repos.Subscription.Save(sub); err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to cancel subscription")
		}
	}

	return c.JSON(fiber.Map{"plan": sub.Plan, "status": sub.Status})
}

// HandleMercadoPagoConnect stores the studio's own Mercado Pago credential so
// client photo purchases are charged on the studio's account.
func HandleMercadoPagoConnect(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req connectPaymentAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if strings.TrimSpace(req.AccessToken) == "" {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", "access_token is required")
	}

	account := &models.ConnectedAccount{
		UserID:            userCtx.UserID,
		Provider:          models.ProviderMercadoPago,
		ExternalAccountID: strings.TrimSpace(req.ExternalAccountID),
		AccessToken:       strings.TrimSpace(req.AccessToken),
		IsActive:          true,
	}
	if err := repository.GetGlobalRepositories().ConnectedAccount.Upsert(account); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to store payment account")
	}

	return c.JSON(fiber.Map{"provider": models.ProviderMercadoPago, "connected": true})
}

// HandleMercadoPagoDisconnect deactivates the studio's payment credential.
func HandleMercadoPagoDisconnect(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	if err := repository.GetGlobalRepositories().ConnectedAccount.Deactivate(userCtx.UserID, models.ProviderMercadoPago); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to disconnect payment account")
	}

	return c.JSON(fiber.Map{"provider": models.ProviderMercadoPago, "connected": false})
}

func subscriptionPrice() float64 {
	raw := env.GetEnv("SUBSCRIPTION_PRICE", "49.90")
	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || price <= 0 {
		return 49.90
	}
	return price
}

func subscriptionWebhookURL() string {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}
	return base + "/api/webhooks/mercadopago/subscription"
}
