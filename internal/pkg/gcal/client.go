package gcal

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

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/env"
)

const defaultCalendarAPIBaseURL = "https://www.googleapis.com/calendar/v3"

// Client writes session bookings into the photographer's primary Google
// calendar. Tokens come from the google row in connected_accounts and are
// refreshed through the stored refresh token when expired.
type Client struct {
	APIBaseURL string
	OAuth      *oauth2.Config
	HTTPClient *http.Client
}

func NewClientFromEnv() *Client {
	return &Client{
		APIBaseURL: strings.TrimRight(env.GetEnv("GOOGLE_CALENDAR_API_BASE_URL", defaultCalendarAPIBaseURL), "/"),
		OAuth: &oauth2.Config{
			ClientID:     strings.TrimSpace(env.GetEnv("GOOGLE_KEY", "")),
			ClientSecret: strings.TrimSpace(env.GetEnv("GOOGLE_SECRET", "")),
			Endpoint:     google.Endpoint,
		},
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type calendarEvent struct {
	Summary     string        `json:"summary"`
	Description string        `json:"description,omitempty"`
	Location    string        `json:"location,omitempty"`
	Start       calendarStamp `json:"start"`
	End         calendarStamp `json:"end"`
}

type calendarStamp struct {
	DateTime string `json:"dateTime"`
}

func toCalendarEvent(ev *models.SessionEvent) calendarEvent {
	return calendarEvent{
		Summary:     ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       calendarStamp{DateTime: ev.StartTime.Format(time.RFC3339)},
		End:         calendarStamp{DateTime: ev.EndTime.Format(time.RFC3339)},
	}
}

// CreateEvent inserts the session into the primary calendar and returns the
// provider event id.
func (c *Client) CreateEvent(ctx context.Context, account *models.ConnectedAccount, ev *models.SessionEvent) (string, error) {
	body, err := json.Marshal(toCalendarEvent(ev))
	if err != nil {
		return "", err
	}

	url := c.APIBaseURL + "/calendars/primary/events"
	respBody, err := c.do(ctx, account, http.MethodPost, url, body)
	if err != nil {
		return "", err
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.ID) == "" {
		return "", errors.New("calendar event response missing id")
	}
	return out.ID, nil
}

// UpdateEvent rewrites an existing calendar event with the session data.
func (c *Client) UpdateEvent(ctx context.Context, account *models.ConnectedAccount, ev *models.SessionEvent) error {
	if strings.TrimSpace(ev.CalendarEventID) == "" {
		return errors.New("session has no calendar event id")
	}

	body, err := json.Marshal(toCalendarEvent(ev))
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/calendars/primary/events/%s", c.APIBaseURL, ev.CalendarEventID)
	_, err = c.do(ctx, account, http.MethodPut, url, body)
	return err
}

// DeleteEvent removes a calendar event; a 404/410 from the provider counts
// as already deleted.
func (c *Client) DeleteEvent(ctx context.Context, account *models.ConnectedAccount, calendarEventID string) error {
	if strings.TrimSpace(calendarEventID) == "" {
		return errors.New("calendar event id is required")
	}

	url := fmt.Sprintf("%s/calendars/primary/events/%s", c.APIBaseURL, calendarEventID)
	_, err := c.do(ctx, account, http.MethodDelete, url, nil)
	var apiErr *apiError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusNotFound || apiErr.Status == http.StatusGone) {
		return nil
	}
	return err
}

type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("calendar request failed: status=%d body=%s", e.Status, e.Body)
}

func (c *Client) do(ctx context.Context, account *models.ConnectedAccount, method, url string, body []byte) ([]byte, error) {
	token, err := c.token(ctx, account)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apiError{Status: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

// token returns a usable access token, refreshing through oauth2 when the
// stored one is expired.
func (c *Client) token(ctx context.Context, account *models.ConnectedAccount) (string, error) {
	if account == nil {
		return "", errors.New("google account is not connected")
	}

	stored := &oauth2.Token{
		AccessToken:  account.AccessToken,
		RefreshToken: account.RefreshToken,
	}
	if account.TokenExpiresAt != nil {
		stored.Expiry = *account.TokenExpiresAt
	}
	if stored.Valid() {
		return stored.AccessToken, nil
	}
	if stored.RefreshToken == "" {
		return "", errors.New("google token expired and no refresh token stored")
	}

	refreshed, err := c.OAuth.TokenSource(ctx, stored).Token()
	if err != nil {
		return "", fmt.Errorf("google token refresh failed: %w", err)
	}
	return refreshed.AccessToken, nil
}
