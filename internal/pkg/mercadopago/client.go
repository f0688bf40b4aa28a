package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/env"
)

const defaultAPIBaseURL = "https://api.mercadopago.com"

// Client talks to the Mercado Pago REST API. Access tokens are passed per
// call because every studio carries its own credential.
type Client struct {
	APIBaseURL string
	HTTPClient *http.Client
}

// PaymentDetail is the normalized shape of a provider payment record as the
// reconciliation flow consumes it.
type PaymentDetail struct {
	ID                string
	Status            string
	StatusDetail      string
	ExternalReference string
	TransactionAmount float64
	FeeTotal          float64
	NetAmount         float64
	PaymentMethodID   string
	PayerEmail        string
	Metadata          map[string]interface{}
}

// PreferenceItem is one purchasable line in a checkout preference.
type PreferenceItem struct {
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// PreferenceInput describes the checkout preference created for an order.
type PreferenceInput struct {
	Items             []PreferenceItem
	ExternalReference string
	PayerEmail        string
	NotificationURL   string
	Metadata          map[string]interface{}
}

// Preference is the provider-side checkout the client is redirected to.
type Preference struct {
	ID                string
	InitPoint         string
	ExternalReference string
}

func NewClientFromEnv() *Client {
	return &Client{
		APIBaseURL: strings.TrimRight(env.GetEnv("MERCADOPAGO_API_BASE_URL", defaultAPIBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetPayment fetches full payment details for a provider payment id.
func (c *Client) GetPayment(ctx context.Context, accessToken, paymentID string) (*PaymentDetail, error) {
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return nil, errors.New("access token is required")
	}
	id := strings.TrimSpace(paymentID)
	if id == "" {
		return nil, errors.New("payment id is required")
	}

	url := fmt.Sprintf("%s/v1/payments/%s", strings.TrimRight(c.APIBaseURL, "/"), id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mercadopago payment fetch failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var raw struct {
		ID                json.Number `json:"id"`
		Status            string      `json:"status"`
		StatusDetail      string      `json:"status_detail"`
		ExternalReference string      `json:"external_reference"`
		TransactionAmount float64     `json:"transaction_amount"`
		PaymentMethodID   string      `json:"payment_method_id"`
		FeeDetails        []struct {
			Type   string  `json:"type"`
			Amount float64 `json:"amount"`
		} `json:"fee_details"`
		Payer struct {
			Email string `json:"email"`
		} `json:"payer"`
		Metadata map[string]interface{} `json:"metadata"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw.ID.String()) == "" {
		return nil, errors.New("mercadopago payment response missing id")
	}

	feeTotal := 0.0
	for _, fee := range raw.FeeDetails {
		feeTotal += fee.Amount
	}

	return &PaymentDetail{
		ID:                raw.ID.String(),
		Status:            strings.ToLower(strings.TrimSpace(raw.Status)),
		StatusDetail:      strings.TrimSpace(raw.StatusDetail),
		ExternalReference: strings.TrimSpace(raw.ExternalReference),
		TransactionAmount: raw.TransactionAmount,
		FeeTotal:          feeTotal,
		NetAmount:         raw.TransactionAmount - feeTotal,
		PaymentMethodID:   strings.TrimSpace(raw.PaymentMethodID),
		PayerEmail:        strings.TrimSpace(raw.Payer.Email),
		Metadata:          raw.Metadata,
	}, nil
}

// CreatePreference creates a checkout preference for an order.
func (c *Client) CreatePreference(ctx context.Context, accessToken string, in PreferenceInput) (*Preference, error) {
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return nil, errors.New("access token is required")
	}
	if len(in.Items) == 0 {
		return nil, errors.New("at least one preference item is required")
	}

	payload := map[string]interface{}{
		"items":              in.Items,
		"external_reference": in.ExternalReference,
	}
	if in.PayerEmail != "" {
		payload["payer"] = map[string]string{"email": in.PayerEmail}
	}
	if in.NotificationURL != "" {
		payload["notification_url"] = in.NotificationURL
	}
	if len(in.Metadata) > 0 {
		payload["metadata"] = in.Metadata
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(c.APIBaseURL, "/") + "/checkout/preferences"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mercadopago preference create failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var raw struct {
		ID                string `json:"id"`
		InitPoint         string `json:"init_point"`
		ExternalReference string `json:"external_reference"`
	}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw.ID) == "" {
		return nil, errors.New("mercadopago preference response missing id")
	}

	return &Preference{
		ID:                raw.ID,
		InitPoint:         raw.InitPoint,
		ExternalReference: raw.ExternalReference,
	}, nil
}

// MetadataString extracts a string-typed metadata value, tolerating numeric
// encodings the provider sometimes returns.
func (p *PaymentDetail) MetadataString(key string) string {
	if p == nil || p.Metadata == nil {
		return ""
	}
	switch v := p.Metadata[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
