package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/env"
)

// Client talks to the third-party WhatsApp gateway the studio uses for
// client notifications.
type Client struct {
	GatewayURL string
	Token      string
	HTTPClient *http.Client
}

func NewClientFromEnv() *Client {
	return &Client{
		GatewayURL: strings.TrimRight(env.GetEnv("WHATSAPP_GATEWAY_URL", ""), "/"),
		Token:      strings.TrimSpace(env.GetEnv("WHATSAPP_GATEWAY_TOKEN", "")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SendMessage posts a text message to a phone number and returns the gateway
// message id.
func (c *Client) SendMessage(ctx context.Context, phone, message string) (string, error) {
	if strings.TrimSpace(c.GatewayURL) == "" {
		return "", errors.New("WHATSAPP_GATEWAY_URL is not configured")
	}
	if strings.TrimSpace(phone) == "" {
		return "", errors.New("phone number is required")
	}

	payload, err := json.Marshal(map[string]string{
		"phone":   strings.TrimSpace(phone),
		"message": message,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.GatewayURL+"/api/messages", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("whatsapp gateway send failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// BookingConfirmation renders the message sent when a session is booked.
func BookingConfirmation(ev *models.SessionEvent, clientName string) string {
	return fmt.Sprintf("Olá %s! Sua sessão %q está confirmada para %s em %s.",
		clientName, ev.Title, ev.StartTime.Format("02/01/2006 15:04"), ev.Location)
}

// BookingUpdate renders the message sent when a session changes.
func BookingUpdate(ev *models.SessionEvent, clientName string) string {
	return fmt.Sprintf("Olá %s! Sua sessão %q foi atualizada: %s em %s.",
		clientName, ev.Title, ev.StartTime.Format("02/01/2006 15:04"), ev.Location)
}

// BookingCancellation renders the message sent when a session is cancelled.
func BookingCancellation(ev *models.SessionEvent, clientName string) string {
	return fmt.Sprintf("Olá %s, sua sessão %q de %s foi cancelada. Entre em contato para reagendar.",
		clientName, ev.Title, ev.StartTime.Format("02/01/2006"))
}
