package payments

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/mercadopago"
)

type fakeRepo struct {
	orders       map[string]*models.Order // keyed by order id
	albums       map[uint][]*models.Album // keyed by event id
	subs         map[uint]*models.Subscription
	transactions map[string]*models.PaymentTransaction // keyed by payment intent id
	accounts     []models.ConnectedAccount
	logs         []models.WebhookLog
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders:       map[string]*models.Order{},
		albums:       map[uint][]*models.Album{},
		subs:         map[uint]*models.Subscription{},
		transactions: map[string]*models.PaymentTransaction{},
	}
}

func (f *fakeRepo) GetOrderByPaymentIntentID(paymentIntentID string) (*models.Order, error) {
	for _, o := range f.orders {
		if o.PaymentIntentID == paymentIntentID {
			clone := *o
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetOrderByExternalReference(ref string) (*models.Order, error) {
	normalized := models.NormalizeExternalReference(ref)
	for _, o := range f.orders {
		if o.ExternalReference == normalized {
			clone := *o
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpdateOrderPayment(orderID string, updates map[string]interface{}) error {
	order, ok := f.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["status"].(string); ok {
		order.Status = v
	}
	if v, ok := updates["metadata"].(models.JSON); ok {
		order.Metadata = v
	}
	if v, ok := updates["payment_intent_id"].(string); ok {
		order.PaymentIntentID = v
	}
	return nil
}

func (f *fakeRepo) GetFirstAlbumByEventID(eventID uint) (*models.Album, error) {
	albums := f.albums[eventID]
	if len(albums) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return albums[0], nil
}

func (f *fakeRepo) MarkAlbumPaid(albumID uint) error {
	for _, albums := range f.albums {
		for _, a := range albums {
			if a.ID == albumID {
				now := time.Now()
				a.IsPaid = true
				a.PaidAt = &now
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetSubscriptionByID(id uint) (*models.Subscription, error) {
	sub, ok := f.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sub, nil
}

func (f *fakeRepo) SaveSubscription(sub *models.Subscription) error {
	f.subs[sub.ID] = sub
	return nil
}

func (f *fakeRepo) GetTransactionByPaymentIntentID(paymentIntentID string) (*models.PaymentTransaction, error) {
	tx, ok := f.transactions[paymentIntentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return tx, nil
}

func (f *fakeRepo) UpdateTransactionStatus(id uint, status string) error {
	for _, tx := range f.transactions {
		if tx.ID == id {
			tx.Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetMercadoPagoAccountByUserID(userID uint) (*models.ConnectedAccount, error) {
	for _, a := range f.accounts {
		if a.UserID == userID && a.IsActive {
			clone := a
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListActiveMercadoPagoAccounts() ([]models.ConnectedAccount, error) {
	var out []models.ConnectedAccount
	for _, a := range f.accounts {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) AppendWebhookLog(entry *models.WebhookLog) error {
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeRepo) lastLog(t *testing.T) models.WebhookLog {
	t.Helper()
	require.NotEmpty(t, f.logs, "expected at least one webhook log entry")
	return f.logs[len(f.logs)-1]
}

type fakeProvider struct {
	detail *mercadopago.PaymentDetail
	err    error
	calls  int
}

func (p *fakeProvider) GetPayment(ctx context.Context, accessToken, paymentID string) (*mercadopago.PaymentDetail, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	clone := *p.detail
	return &clone, nil
}

func paymentNotification(id interface{}) Notification {
	var n Notification
	n.Type = "payment"
	n.Data.ID = id
	return n
}

func singleAccountRepo() *fakeRepo {
	repo := newFakeRepo()
	repo.accounts = []models.ConnectedAccount{
		{ID: 1, UserID: 7, Provider: models.ProviderMercadoPago, AccessToken: "tok-7", IsActive: true},
	}
	return repo
}

func TestHandlePaymentNotification_EndToEndApproved(t *testing.T) {
	repo := singleAccountRepo()
	repo.orders["o1"] = &models.Order{
		ID:              "o1",
		EventID:         1,
		Status:          models.OrderStatusPending,
		PaymentIntentID: "555",
	}
	repo.albums[1] = []*models.Album{{ID: 10, EventID: 1}}

	provider := &fakeProvider{detail: &mercadopago.PaymentDetail{
		ID:                "555",
		Status:            "approved",
		TransactionAmount: 100,
		FeeTotal:          5,
		NetAmount:         95,
		PaymentMethodID:   "pix",
		PayerEmail:        "buyer@example.com",
	}}

	svc := NewService(repo, provider)
	result, err := svc.HandlePaymentNotification(context.Background(), `{"type":"payment","data":{"id":555}}`, paymentNotification(float64(555)), 0)
	require.NoError(t, err)

	assert.Equal(t, "o1", result.OrderID)
	assert.Equal(t, models.OrderStatusPending, result.OldStatus)
	assert.Equal(t, models.OrderStatusPaid, result.NewStatus)

	order := repo.orders["o1"]
	assert.Equal(t, models.OrderStatusPaid, order.Status)

	meta, err := order.Metadata.AsMap()
	require.NoError(t, err)
	assert.Equal(t, 95.0, meta["net_amount"])
	assert.Equal(t, 5.0, meta["fee_amount"])
	assert.Equal(t, true, meta["updated_by_webhook"])
	assert.Equal(t, "buyer@example.com", meta["payer_email"])

	assert.True(t, repo.albums[1][0].IsPaid, "first album of the event should be marked paid")

	entry := repo.lastLog(t)
	assert.Equal(t, models.WebhookEventPayment, entry.EventType)
	assert.Equal(t, models.WebhookStatusSuccess, entry.Status)
}

func TestHandlePaymentNotification_SendsOrderPaidMailOnce(t *testing.T) {
	repo := singleAccountRepo()
	repo.orders["o1"] = &models.Order{
		ID:              "o1",
		EventID:         1,
		Status:          models.OrderStatusPending,
		PaymentIntentID: "555",
		BuyerEmail:      "buyer@example.com",
	}
	repo.albums[1] = []*models.Album{{ID: 10, EventID: 1, Title: "Ensaio Gestante"}}

	provider := &fakeProvider{detail: &mercadopago.PaymentDetail{
		ID:                "555",
		Status:            "approved",
		TransactionAmount: 100,
	}}

	svc := NewService(repo, provider)
	var mails []string
	svc.mailer = func(to string, order *models.Order, albumTitle string) error {
		mails = append(mails, to+"|"+albumTitle)
		return nil
	}

	_, err := svc.HandlePaymentNotification(context.Background(), `{}`, paymentNotification("555"), 0)
	require.NoError(t, err)
	require.Equal(t, []string{"buyer@example.com|Ensaio Gestante"}, mails)

	// Redelivery of an already-paid order must not mail again.
	_, err = svc.HandlePaymentNotification(context.Background(), `{}`, paymentNotification("555"), 0)
	require.NoError(t, err)
	assert.Len(t, mails, 1)
}

func TestHandlePaymentNotification_Idempotent(t *testing.T) {
	repo := singleAccountRepo()
	repo.orders["o1"] = &models.Order{
		ID:              "o1",
		EventID:         1,
		Status:          models.OrderStatusPending,
		PaymentIntentID: "555",
	}

	provider := &fakeProvider{detail: &mercadopago.PaymentDetail{
		ID:                "555",
		Status:            "approved",
		TransactionAmount: 100,
		FeeTotal:          5,
		NetAmount:         95,
	}}

	svc := NewService(repo, provider)
	raw := `{"type":"payment","data":{"id":555}}`

	_, err := svc.HandlePaymentNotification(context.Background(), raw, paymentNotification("555"), 0)
	require.NoError(t, err)
	statusAfterFirst := repo.orders["o1"].Status
	metaAfterFirst := string(repo.orders["o1"].Metadata)

	result, err := svc.HandlePaymentNotification(context.Background(), raw, paymentNotification("555"), 0)
	require.NoError(t, err)

	assert.Equal(t, statusAfterFirst, repo.orders["o1"].Status)
	assert.JSONEq(t, metaAfterFirst, string(repo.orders["o1"].Metadata))
	assert.Equal(t, models.OrderStatusPaid, result.OldStatus, "second run sees the already-paid order")
	assert.Equal(t, models.OrderStatusPaid, result.NewStatus)
}

func TestHandlePaymentNotification_Orphan(t *testing.T) {
	repo := singleAccountRepo()

	provider := &fakeProvider{detail: &mercadopago.PaymentDetail{
		ID:                "999",
		Status:            "approved",
		ExternalReference: "NO-SUCH-REF",
		TransactionAmount: 50,
	}}

	svc := NewService(repo, provider)
	result, err := svc.HandlePaymentNotification(context.Background(), `{}`, paymentNotification("999"), 0)
	require.NoError(t, err)

	assert.True(t, result.Orphan)
	entry := repo.lastLog(t)
	assert.Equal(t, models.WebhookEventPaymentOrphan, entry.EventType)
	assert.Equal(t, models.WebhookStatusSuccess, entry.Status)
	assert.Empty(t, repo.orders, "no order may be mutated for an orphan payment")
}

func TestHandlePaymentNotification_FallbackCorrectsPaymentIntentID(t *testing.T) {
	repo := singleAccountRepo()
	repo.orders["o2"] = &models.Order{
		ID:                "o2",
		EventID:           2,
		Status:            models.OrderStatusPending,
		PaymentIntentID:   "subscription_ABC123",
		ExternalReference: models.NormalizeExternalReference("ABC123"),
	}

	provider := &fakeProvider{detail: &mercadopago.PaymentDetail{
		ID:                "777",
		Status:            "approved",
		ExternalReference: "ABC123",
		TransactionAmount: 40,
	}}

	svc := NewService(repo, provider)
	result, err := svc.HandlePaymentNotification(context.Background(), `{}`, paymentNotification("777"), 0)
	require.NoError(t, err)

	assert.Equal(t, "o2", result.OrderID)
	assert.Equal(t, "777", repo.orders["o2"].PaymentIntentID, "payment intent id should be corrected to the canonical provider id")
	assert.Equal(t, models.OrderStatusPaid, repo.orders["o2"].Status)
}

func TestHandlePaymentNotification_IgnoresOtherTypes(t *testing.T) {
	repo := singleAccountRepo()
	provider := &fakeProvider{}

	svc := NewService(repo, provider)
	var n Notification
	n.Type = "merchant_order"
	n.Data.ID = "123"

	result, err := svc.HandlePaymentNotification(context.Background(), `{}`, n, 0)
	require.NoError(t, err)
	assert.True(t, result.Ignored)
	assert.Zero(t, provider.calls, "ignored types must not hit the provider")

	entry := repo.lastLog(t)
	assert.Equal(t, models.WebhookEventPaymentIgnored, entry.EventType)
	assert.Equal(t, models.WebhookStatusSuccess, entry.Status)
}

func TestHandlePaymentNotification_MissingIDIsMalformed(t *testing.T) {
	svc := NewService(singleAccountRepo(), &fakeProvider{})

	var n Notification
	n.Type = "payment"

	_, err := svc.HandlePaymentNotification(context.Background(), `{}`, n, 0)
	assert.ErrorIs(t, err, ErrMalformedNotification)
}

func TestHandlePaymentNotification_FetchFailureIsLoggedAndReturned(t *testing.T) {
	repo := singleAccountRepo()
	provider := &fakeProvider{err: errors.New("mercadopago payment fetch failed: status=500")}

	svc := NewService(repo, provider)
	_, err := svc.HandlePaymentNotification(context.Background(), `{}`, paymentNotification("1"), 0)
	require.Error(t, err)

	entry := repo.lastLog(t)
	assert.Equal(t, models.WebhookEventPaymentFetchFailed, entry.EventType)
	assert.Equal(t, models.WebhookStatusFailed, entry.Status)
}

func TestHandlePaymentNotification_CredentialResolution(t *testing.T) {
	provider := &fakeProvider{detail: &mercadopago.PaymentDetail{ID: "1", Status: "approved"}}

	// No credentials at all.
	svc := NewService(newFakeRepo(), provider)
	_, err := svc.HandlePaymentNotification(context.Background(), `{}`, paymentNotification("1"), 0)
	assert.ErrorIs(t, err, ErrNoCredentials)

	// Two active accounts without a studio hint is ambiguous.
	repo := newFakeRepo()
	repo.accounts = []models.ConnectedAccount{
		{ID: 1, UserID: 7, Provider: models.ProviderMercadoPago, AccessToken: "a", IsActive: true},
		{ID: 2, UserID: 8, Provider: models.ProviderMercadoPago, AccessToken: "b", IsActive: true},
	}
	svc = NewService(repo, provider)
	_, err = svc.HandlePaymentNotification(context.Background(), `{}`, paymentNotification("1"), 0)
	assert.ErrorIs(t, err, ErrNoCredentials)

	// The studio hint disambiguates.
	repo.orders["o1"] = &models.Order{ID: "o1", EventID: 1, Status: models.OrderStatusPending, PaymentIntentID: "1"}
	result, err := svc.HandlePaymentNotification(context.Background(), `{}`, paymentNotification("1"), 8)
	require.NoError(t, err)
	assert.Equal(t, "o1", result.OrderID)
}

func TestHandleSubscriptionNotification_Approved(t *testing.T) {
	repo := singleAccountRepo()
	repo.subs[3] = &models.Subscription{
		ID:     3,
		UserID: 7,
		Plan:   models.PlanTrial,
		Status: models.SubscriptionStatusPendingPayment,
	}
	repo.transactions["888"] = &models.PaymentTransaction{
		ID:              11,
		SubscriptionID:  3,
		PaymentIntentID: "888",
		Status:          models.TransactionStatusPending,
	}

	provider := &fakeProvider{detail: &mercadopago.PaymentDetail{
		ID:                "888",
		Status:            "approved",
		TransactionAmount: 29.9,
		Metadata: map[string]interface{}{
			"type":            "subscription_payment",
			"subscription_id": "3",
		},
	}}

	svc := NewService(repo, provider)
	before := time.Now()
	result, err := svc.HandleSubscriptionNotification(context.Background(), `{}`, paymentNotification("888"), 0)
	require.NoError(t, err)

	assert.Equal(t, uint(3), result.SubscriptionID)
	assert.Equal(t, models.PlanPaid, result.Plan)
	assert.Equal(t, models.SubscriptionStatusActive, result.Status)

	sub := repo.subs[3]
	require.NotNil(t, sub.ExpiresAt)
	wantExpiry := before.Add(30 * 24 * time.Hour)
	assert.WithinDuration(t, wantExpiry, *sub.ExpiresAt, time.Minute)
	assert.Equal(t, 29.9, sub.LastPaymentAmount)
	require.NotNil(t, sub.LastPaymentAt)

	assert.Equal(t, models.TransactionStatusApproved, repo.transactions["888"].Status)
}

func TestHandleSubscriptionNotification_NonSubscriptionPaymentIgnored(t *testing.T) {
	repo := singleAccountRepo()
	provider := &fakeProvider{detail: &mercadopago.PaymentDetail{
		ID:     "1",
		Status: "approved",
	}}

	svc := NewService(repo, provider)
	result, err := svc.HandleSubscriptionNotification(context.Background(), `{}`, paymentNotification("1"), 0)
	require.NoError(t, err)
	assert.True(t, result.Ignored)
}

func TestHandleSubscriptionNotification_RejectedIgnoredByDesign(t *testing.T) {
	repo := singleAccountRepo()
	repo.subs[3] = &models.Subscription{ID: 3, Plan: models.PlanTrial, Status: models.SubscriptionStatusPendingPayment}
	provider := &fakeProvider{detail: &mercadopago.PaymentDetail{
		ID:     "2",
		Status: "rejected",
		Metadata: map[string]interface{}{
			"type":            "subscription_payment",
			"subscription_id": "3",
		},
	}}

	svc := NewService(repo, provider)
	result, err := svc.HandleSubscriptionNotification(context.Background(), `{}`, paymentNotification("2"), 0)
	require.NoError(t, err)
	assert.True(t, result.Ignored)
	assert.Equal(t, models.PlanTrial, repo.subs[3].Plan, "rejected payments must not mutate the subscription")
}

func TestNormalizeDataID(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{in: "555", want: "555"},
		{in: float64(555), want: "555"},
		{in: json.Number("123456789"), want: "123456789"},
		{in: nil, want: ""},
		{in: true, want: ""},
	}
	for _, tt := range tests {
		if got := normalizeDataID(tt.in); got != tt.want {
			t.Fatalf("normalizeDataID(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
