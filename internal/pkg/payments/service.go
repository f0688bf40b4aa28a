package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/env"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/mail"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/mercadopago"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/retry"
)

// subscriptionExtension is how much paid time one approved subscription
// payment buys.
const subscriptionExtension = 30 * 24 * time.Hour

// Service reconciles asynchronous provider payment notifications with local
// order and subscription state. Every external call that fails is logged to
// the webhook audit trail and surfaced as an error so the HTTP layer answers
// 500 and the provider redelivers; the system has no internal retry queue.
type Service struct {
	repo     Repository
	provider Provider
	mailer   func(to string, order *models.Order, albumTitle string) error
}

// NewService creates a reconciliation service from injected dependencies.
func NewService(repo Repository, provider Provider) *Service {
	return &Service{repo: repo, provider: provider, mailer: mail.SendOrderPaidMail}
}

// NewServiceFromDB creates a service bound to GORM and the real provider.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), mercadopago.NewClientFromEnv())
}

// HandlePaymentNotification processes one inbound payment webhook delivery.
// studioID selects the operator credential; zero means "resolve the single
// configured credential".
func (s *Service) HandlePaymentNotification(ctx context.Context, rawPayload string, n Notification, studioID uint) (*ReconcileResult, error) {
	paymentID := normalizeDataID(n.Data.ID)

	if strings.ToLower(strings.TrimSpace(n.Type)) != "payment" {
		// Unknown notification types are acknowledged so the provider's
		// retry policy is not triggered by types this handler ignores.
		s.audit(models.WebhookEventPaymentIgnored, rawPayload, fmt.Sprintf(`{"ignored_type":%q}`, n.Type), models.WebhookStatusSuccess)
		return &ReconcileResult{Ignored: true}, nil
	}
	if paymentID == "" {
		return nil, fmt.Errorf("%w: missing data.id", ErrMalformedNotification)
	}

	token, err := s.resolveAccessToken(studioID)
	if err != nil {
		s.audit(models.WebhookEventPaymentFetchFailed, rawPayload, err.Error(), models.WebhookStatusFailed)
		return nil, err
	}

	detail, err := s.provider.GetPayment(ctx, token, paymentID)
	if err != nil {
		s.audit(models.WebhookEventPaymentFetchFailed, rawPayload, err.Error(), models.WebhookStatusFailed)
		return nil, fmt.Errorf("payment detail fetch failed: %w", err)
	}

	order, corrected, err := s.locateOrder(ctx, detail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// A payment the system cannot attribute. Logged for manual
			// reconciliation, acknowledged so it is never redelivered.
			summary, _ := json.Marshal(map[string]interface{}{
				"payment_id":         detail.ID,
				"external_reference": detail.ExternalReference,
				"status":             detail.Status,
				"transaction_amount": detail.TransactionAmount,
			})
			s.audit(models.WebhookEventPaymentOrphan, rawPayload, string(summary), models.WebhookStatusSuccess)
			return &ReconcileResult{Orphan: true}, nil
		}
		s.audit(models.WebhookEventPayment, rawPayload, err.Error(), models.WebhookStatusFailed)
		return nil, fmt.Errorf("order lookup failed: %w", err)
	}

	oldStatus := order.Status
	newStatus := MapPaymentStatus(detail.Status)

	updates, err := s.buildOrderUpdates(order, detail, newStatus, corrected)
	if err != nil {
		s.audit(models.WebhookEventPaymentUpdateFailed, rawPayload, err.Error(), models.WebhookStatusFailed)
		return nil, err
	}

	if _, err := retry.Do(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repo.UpdateOrderPayment(order.ID, updates)
	}); err != nil {
		s.audit(models.WebhookEventPaymentUpdateFailed, rawPayload, err.Error(), models.WebhookStatusFailed)
		return nil, fmt.Errorf("order update failed: %w", err)
	}

	if newStatus == models.OrderStatusPaid {
		s.markAlbumPaid(order.EventID)
		if oldStatus != models.OrderStatusPaid {
			s.notifyOrderPaid(order)
		}
	}

	summary, _ := json.Marshal(map[string]interface{}{
		"order_id":           order.ID,
		"old_status":         oldStatus,
		"new_status":         newStatus,
		"payment_id":         detail.ID,
		"transaction_amount": detail.TransactionAmount,
		"net_amount":         detail.NetAmount,
	})
	s.audit(models.WebhookEventPayment, rawPayload, string(summary), models.WebhookStatusSuccess)

	return &ReconcileResult{
		OrderID:   order.ID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}, nil
}

// HandleSubscriptionNotification processes payments tagged as subscription
// charges. Rejections and cancellations are intentionally not handled.
func (s *Service) HandleSubscriptionNotification(ctx context.Context, rawPayload string, n Notification, studioID uint) (*SubscriptionResult, error) {
	paymentID := normalizeDataID(n.Data.ID)

	if strings.ToLower(strings.TrimSpace(n.Type)) != "payment" {
		s.audit(models.WebhookEventSubscription, rawPayload, fmt.Sprintf(`{"ignored_type":%q}`, n.Type), models.WebhookStatusSuccess)
		return &SubscriptionResult{Ignored: true}, nil
	}
	if paymentID == "" {
		return nil, fmt.Errorf("%w: missing data.id", ErrMalformedNotification)
	}

	token, err := s.resolveAccessToken(studioID)
	if err != nil {
		s.audit(models.WebhookEventSubscription, rawPayload, err.Error(), models.WebhookStatusFailed)
		return nil, err
	}

	detail, err := s.provider.GetPayment(ctx, token, paymentID)
	if err != nil {
		s.audit(models.WebhookEventSubscription, rawPayload, err.Error(), models.WebhookStatusFailed)
		return nil, fmt.Errorf("payment detail fetch failed: %w", err)
	}

	if detail.MetadataString("type") != "subscription_payment" {
		s.audit(models.WebhookEventSubscription, rawPayload, `{"ignored":"not a subscription payment"}`, models.WebhookStatusSuccess)
		return &SubscriptionResult{Ignored: true}, nil
	}

	if detail.Status != "approved" {
		s.audit(models.WebhookEventSubscription, rawPayload,
			fmt.Sprintf(`{"ignored_status":%q}`, detail.Status), models.WebhookStatusSuccess)
		return &SubscriptionResult{Ignored: true}, nil
	}

	subID := parseUint(detail.MetadataString("subscription_id"))
	if subID == 0 {
		s.audit(models.WebhookEventSubscription, rawPayload, `{"error":"missing subscription_id metadata"}`, models.WebhookStatusSuccess)
		return &SubscriptionResult{Ignored: true}, nil
	}

	sub, err := s.repo.GetSubscriptionByID(subID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.audit(models.WebhookEventSubscription, rawPayload,
				fmt.Sprintf(`{"orphan_subscription_id":%d}`, subID), models.WebhookStatusSuccess)
			return &SubscriptionResult{Ignored: true}, nil
		}
		s.audit(models.WebhookEventSubscription, rawPayload, err.Error(), models.WebhookStatusFailed)
		return nil, fmt.Errorf("subscription lookup failed: %w", err)
	}

	now := time.Now()
	expires := now.Add(subscriptionExtension)
	sub.Plan = models.PlanPaid
	sub.Status = models.SubscriptionStatusActive
	sub.LastPaymentAt = &now
	sub.LastPaymentAmount = detail.TransactionAmount
	sub.ExpiresAt = &expires
	sub.PaymentIntentID = detail.ID

	if err := s.repo.SaveSubscription(sub); err != nil {
		s.audit(models.WebhookEventSubscription, rawPayload, err.Error(), models.WebhookStatusFailed)
		return nil, fmt.Errorf("subscription update failed: %w", err)
	}

	if tx, err := s.repo.GetTransactionByPaymentIntentID(detail.ID); err == nil {
		if err := s.repo.UpdateTransactionStatus(tx.ID, models.TransactionStatusApproved); err != nil {
			log.Warnf("payment transaction %d status update failed: %v", tx.ID, err)
		}
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		// Checkout keyed the transaction by preference id; the metadata
		// carries the row id for this case.
		if txID := parseUint(detail.MetadataString("transaction_id")); txID != 0 {
			if err := s.repo.UpdateTransactionStatus(txID, models.TransactionStatusApproved); err != nil {
				log.Warnf("payment transaction %d status update failed: %v", txID, err)
			}
		}
	} else {
		log.Warnf("payment transaction lookup for %s failed: %v", detail.ID, err)
	}

	summary, _ := json.Marshal(map[string]interface{}{
		"subscription_id": sub.ID,
		"plan":            sub.Plan,
		"status":          sub.Status,
		"amount":          detail.TransactionAmount,
		"expires_at":      expires.UTC().Format(time.RFC3339),
	})
	s.audit(models.WebhookEventSubscription, rawPayload, string(summary), models.WebhookStatusSuccess)

	return &SubscriptionResult{
		SubscriptionID: sub.ID,
		Plan:           sub.Plan,
		Status:         sub.Status,
	}, nil
}

// resolveAccessToken picks the operator credential for a delivery. Webhook
// URLs are registered per studio; without the studio hint exactly one active
// credential must exist, anything else is an error rather than an arbitrary
// pick.
func (s *Service) resolveAccessToken(studioID uint) (string, error) {
	if studioID != 0 {
		account, err := s.repo.GetMercadoPagoAccountByUserID(studioID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", fmt.Errorf("%w: studio %d has no active account", ErrNoCredentials, studioID)
			}
			return "", err
		}
		return account.AccessToken, nil
	}

	// Deliveries without a studio hint belong to the platform's own account
	// (subscription billing) when one is configured.
	if token := strings.TrimSpace(env.GetEnv("MERCADOPAGO_PLATFORM_ACCESS_TOKEN", "")); token != "" {
		return token, nil
	}

	accounts, err := s.repo.ListActiveMercadoPagoAccounts()
	if err != nil {
		return "", err
	}
	switch len(accounts) {
	case 0:
		return "", fmt.Errorf("%w: none configured", ErrNoCredentials)
	case 1:
		return accounts[0].AccessToken, nil
	default:
		return "", fmt.Errorf("%w: %d active accounts, studio parameter required", ErrNoCredentials, len(accounts))
	}
}

// locateOrder finds the order for a payment: exact match on the stored
// payment intent id first, then the normalized external-reference lookup.
// The second return value reports whether the stored payment intent id needs
// correcting to the canonical provider id.
func (s *Service) locateOrder(ctx context.Context, detail *mercadopago.PaymentDetail) (*models.Order, bool, error) {
	order, err := retry.Do(ctx, func(ctx context.Context) (*models.Order, error) {
		return s.repo.GetOrderByPaymentIntentID(detail.ID)
	})
	if err == nil {
		return order, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if strings.TrimSpace(detail.ExternalReference) == "" {
		return nil, false, gorm.ErrRecordNotFound
	}

	order, err = retry.Do(ctx, func(ctx context.Context) (*models.Order, error) {
		return s.repo.GetOrderByExternalReference(detail.ExternalReference)
	})
	if err != nil {
		return nil, false, err
	}

	log.Infof("order %s matched by external reference %q, correcting payment intent id to %s",
		order.ID, detail.ExternalReference, detail.ID)
	return order, true, nil
}

// buildOrderUpdates merges payment facts into the order metadata without
// replacing fields the order already carries.
func (s *Service) buildOrderUpdates(order *models.Order, detail *mercadopago.PaymentDetail, newStatus string, corrected bool) (map[string]interface{}, error) {
	meta, err := order.Metadata.AsMap()
	if err != nil {
		return nil, fmt.Errorf("order metadata decode failed: %w", err)
	}

	meta["mp_status"] = detail.Status
	meta["mp_status_detail"] = detail.StatusDetail
	meta["payment_method"] = detail.PaymentMethodID
	meta["transaction_amount"] = detail.TransactionAmount
	meta["fee_amount"] = detail.FeeTotal
	meta["net_amount"] = detail.NetAmount
	if detail.PayerEmail != "" {
		meta["payer_email"] = detail.PayerEmail
	}
	meta["updated_by_webhook"] = true

	encoded, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("order metadata encode failed: %w", err)
	}

	updates := map[string]interface{}{
		"status":   newStatus,
		"metadata": models.JSON(encoded),
	}
	if corrected {
		updates["payment_intent_id"] = detail.ID
	}
	return updates, nil
}

// markAlbumPaid surfaces payment completion on the first album of the
// order's event. Best effort: a failure here never fails the delivery.
func (s *Service) markAlbumPaid(eventID uint) {
	album, err := s.repo.GetFirstAlbumByEventID(eventID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("album lookup for event %d failed: %v", eventID, err)
		}
		return
	}
	if err := s.repo.MarkAlbumPaid(album.ID); err != nil {
		log.Warnf("album %d paid flag update failed: %v", album.ID, err)
	}
}

// notifyOrderPaid mails the buyer a payment confirmation. Best effort: the
// delivery is already reconciled when this runs.
func (s *Service) notifyOrderPaid(order *models.Order) {
	if strings.TrimSpace(order.BuyerEmail) == "" {
		return
	}
	albumTitle := ""
	if album, err := s.repo.GetFirstAlbumByEventID(order.EventID); err == nil {
		albumTitle = album.Title
	}
	if err := s.mailer(order.BuyerEmail, order, albumTitle); err != nil {
		log.Warnf("order paid mail for order %s failed: %v", order.ID, err)
	}
}

// audit appends to the webhook log. The log is diagnostic only, so a write
// failure is logged and swallowed.
func (s *Service) audit(eventType, payload, response, status string) {
	entry := &models.WebhookLog{
		EventType: eventType,
		Payload:   payload,
		Response:  response,
		Status:    status,
	}
	if err := s.repo.AppendWebhookLog(entry); err != nil {
		log.Errorf("webhook audit log append failed: %v", err)
	}
}

// normalizeDataID accepts the string or numeric payment ids the provider
// sends interchangeably.
func normalizeDataID(id interface{}) string {
	switch v := id.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

func parseUint(s string) uint {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}
