package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/payments"
)

type fakePaymentHandler struct {
	reconcile    *payments.ReconcileResult
	subscription *payments.SubscriptionResult
	err          error

	gotStudioID uint
	gotRaw      string
	gotType     string
}

func (f *fakePaymentHandler) HandlePaymentNotification(_ context.Context, raw string, n payments.Notification, studioID uint) (*payments.ReconcileResult, error) {
	f.gotRaw = raw
	f.gotType = n.Type
	f.gotStudioID = studioID
	return f.reconcile, f.err
}

func (f *fakePaymentHandler) HandleSubscriptionNotification(_ context.Context, raw string, n payments.Notification, studioID uint) (*payments.SubscriptionResult, error) {
	f.gotRaw = raw
	f.gotType = n.Type
	f.gotStudioID = studioID
	return f.subscription, f.err
}

func withFakePaymentHandler(t *testing.T, fake *fakePaymentHandler) {
	t.Helper()
	orig := paymentService
	paymentService = func() paymentHandler { return fake }
	t.Cleanup(func() { paymentService = orig })
}

func newWebhookTestApp() *fiber.App {
	app := fiber.New()
	app.Post("/api/webhooks/mercadopago", HandleMercadoPagoWebhook)
	app.Post("/api/webhooks/mercadopago/subscription", HandleSubscriptionWebhook)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return resp.StatusCode, decoded
}

func TestMercadoPagoWebhook_ReconcilesOrder(t *testing.T) {
	fake := &fakePaymentHandler{
		reconcile: &payments.ReconcileResult{
			OrderID:   "ORDER-1",
			OldStatus: "pending",
			NewStatus: "paid",
		},
	}
	withFakePaymentHandler(t, fake)
	app := newWebhookTestApp()

	body := `{"type":"payment","data":{"id":"12345"}}`
	status, resp := postJSON(t, app, "/api/webhooks/mercadopago?studio=7", body)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "ORDER-1", resp["orderId"])
	assert.Equal(t, "pending", resp["oldStatus"])
	assert.Equal(t, "paid", resp["newStatus"])

	assert.Equal(t, uint(7), fake.gotStudioID)
	assert.Equal(t, "payment", fake.gotType)
	assert.Equal(t, body, fake.gotRaw)
}

func TestMercadoPagoWebhook_IgnoredNotificationAcknowledged(t *testing.T) {
	fake := &fakePaymentHandler{reconcile: &payments.ReconcileResult{Ignored: true}}
	withFakePaymentHandler(t, fake)
	app := newWebhookTestApp()

	status, resp := postJSON(t, app, "/api/webhooks/mercadopago", `{"type":"merchant_order","data":{"id":"1"}}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, resp["success"])
	assert.NotContains(t, resp, "orderId")
}

func TestMercadoPagoWebhook_MalformedNotificationIsBadRequest(t *testing.T) {
	fake := &fakePaymentHandler{err: payments.ErrMalformedNotification}
	withFakePaymentHandler(t, fake)
	app := newWebhookTestApp()

	status, resp := postJSON(t, app, "/api/webhooks/mercadopago", `{"type":"payment","data":{}}`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "bad_request", resp["error"])
}

func TestMercadoPagoWebhook_ProcessingFailureAsksForRedelivery(t *testing.T) {
	fake := &fakePaymentHandler{err: assert.AnError}
	withFakePaymentHandler(t, fake)
	app := newWebhookTestApp()

	status, resp := postJSON(t, app, "/api/webhooks/mercadopago", `{"type":"payment","data":{"id":"9"}}`)

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "internal_server_error", resp["error"])
}

func TestMercadoPagoWebhook_InvalidBodyIsBadRequest(t *testing.T) {
	fake := &fakePaymentHandler{}
	withFakePaymentHandler(t, fake)
	app := newWebhookTestApp()

	status, resp := postJSON(t, app, "/api/webhooks/mercadopago", `not json`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "bad_request", resp["error"])
}

func TestSubscriptionWebhook_ActivatesSubscription(t *testing.T) {
	fake := &fakePaymentHandler{
		subscription: &payments.SubscriptionResult{
			SubscriptionID: 42,
			Plan:           "paid",
			Status:         "active",
		},
	}
	withFakePaymentHandler(t, fake)
	app := newWebhookTestApp()

	status, resp := postJSON(t, app, "/api/webhooks/mercadopago/subscription?studio=3", `{"type":"payment","data":{"id":555}}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(42), resp["subscriptionId"])
	assert.Equal(t, "paid", resp["plan"])
	assert.Equal(t, "active", resp["status"])
	assert.Equal(t, uint(3), fake.gotStudioID)
}

func TestSubscriptionWebhook_IgnoredAcknowledged(t *testing.T) {
	fake := &fakePaymentHandler{subscription: &payments.SubscriptionResult{Ignored: true}}
	withFakePaymentHandler(t, fake)
	app := newWebhookTestApp()

	status, resp := postJSON(t, app, "/api/webhooks/mercadopago/subscription", `{"type":"payment","data":{"id":"1"}}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, resp["success"])
	assert.NotContains(t, resp, "subscriptionId")
}

func TestStudioIDFromQuery(t *testing.T) {
	app := fiber.New()
	var got uint
	app.Get("/probe", func(c *fiber.Ctx) error {
		got = studioIDFromQuery(c)
		return c.SendStatus(fiber.StatusOK)
	})

	cases := []struct {
		query string
		want  uint
	}{
		{"studio=12", 12},
		{"studio=0", 0},
		{"studio=abc", 0},
		{"", 0},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("GET", "/probe?"+tc.query, nil)
		_, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "query %q", tc.query)
	}
}
