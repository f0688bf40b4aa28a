package booking

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/gcal"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/whatsapp"
)

// Names of the secondary effects attached to a booking operation.
const (
	EffectCalendar = "google_calendar"
	EffectWhatsApp = "whatsapp"
)

// EffectOutcome records one best-effort side effect of a booking operation.
type EffectOutcome struct {
	Name       string `json:"name"`
	OK         bool   `json:"ok"`
	ExternalID string `json:"external_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Result separates the primary operation's outcome from its secondary
// effects: the booking succeeded iff the primary write succeeded, no matter
// what calendar or messaging did.
type Result struct {
	Event   *models.SessionEvent `json:"event"`
	Effects []EffectOutcome      `json:"effects"`
}

// Calendar is the slice of the calendar adapter the booking flow uses.
type Calendar interface {
	CreateEvent(ctx context.Context, account *models.ConnectedAccount, ev *models.SessionEvent) (string, error)
	UpdateEvent(ctx context.Context, account *models.ConnectedAccount, ev *models.SessionEvent) error
	DeleteEvent(ctx context.Context, account *models.ConnectedAccount, calendarEventID string) error
}

// Messenger is the slice of the WhatsApp adapter the booking flow uses.
type Messenger interface {
	SendMessage(ctx context.Context, phone, message string) (string, error)
}

// Repository provides the DB operations the booking flow needs.
type Repository interface {
	CreateEvent(ev *models.SessionEvent) error
	UpdateEvent(ev *models.SessionEvent) error
	GetEventByID(id uint) (*models.SessionEvent, error)
	GetClientByID(id uint) (*models.Client, error)
	GetGoogleAccountByUserID(userID uint) (*models.ConnectedAccount, error)
	SetCalendarEventID(eventID uint, calendarEventID string) error
}

// Service books photo sessions and fans out the external sync as
// best-effort side effects.
type Service struct {
	repo      Repository
	calendar  Calendar
	messenger Messenger
}

func NewService(repo Repository, calendar Calendar, messenger Messenger) *Service {
	return &Service{repo: repo, calendar: calendar, messenger: messenger}
}

func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), gcal.NewClientFromEnv(), whatsapp.NewClientFromEnv())
}

// CreateBooking creates the session and then syncs calendar and WhatsApp.
// Only the primary insert can fail the call.
func (s *Service) CreateBooking(ctx context.Context, ev *models.SessionEvent) (*Result, error) {
	if ev.Status == "" {
		ev.Status = models.EventStatusScheduled
	}
	if err := s.repo.CreateEvent(ev); err != nil {
		return nil, err
	}

	result := &Result{Event: ev}
	result.Effects = append(result.Effects, s.syncCalendarCreate(ctx, ev))
	result.Effects = append(result.Effects, s.notifyClient(ctx, ev, whatsapp.BookingConfirmation))
	return result, nil
}

// UpdateBooking saves the session and propagates the change.
func (s *Service) UpdateBooking(ctx context.Context, ev *models.SessionEvent) (*Result, error) {
	if err := s.repo.UpdateEvent(ev); err != nil {
		return nil, err
	}

	result := &Result{Event: ev}
	result.Effects = append(result.Effects, s.syncCalendarUpdate(ctx, ev))
	result.Effects = append(result.Effects, s.notifyClient(ctx, ev, whatsapp.BookingUpdate))
	return result, nil
}

// CancelBooking marks the session cancelled, removes the calendar event and
// messages the client.
func (s *Service) CancelBooking(ctx context.Context, eventID uint) (*Result, error) {
	ev, err := s.repo.GetEventByID(eventID)
	if err != nil {
		return nil, err
	}

	ev.Status = models.EventStatusCancelled
	if err := s.repo.UpdateEvent(ev); err != nil {
		return nil, err
	}

	result := &Result{Event: ev}
	result.Effects = append(result.Effects, s.syncCalendarDelete(ctx, ev))
	result.Effects = append(result.Effects, s.notifyClient(ctx, ev, whatsapp.BookingCancellation))
	return result, nil
}

func (s *Service) syncCalendarCreate(ctx context.Context, ev *models.SessionEvent) EffectOutcome {
	outcome := EffectOutcome{Name: EffectCalendar}

	account, err := s.repo.GetGoogleAccountByUserID(ev.UserID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("google account lookup for user %d failed: %v", ev.UserID, err)
		}
		outcome.Error = "google account not connected"
		return outcome
	}

	calendarID, err := s.calendar.CreateEvent(ctx, account, ev)
	if err != nil {
		log.Warnf("calendar create for session %d failed: %v", ev.ID, err)
		outcome.Error = err.Error()
		return outcome
	}

	ev.CalendarEventID = calendarID
	if err := s.repo.SetCalendarEventID(ev.ID, calendarID); err != nil {
		log.Warnf("storing calendar event id for session %d failed: %v", ev.ID, err)
	}

	outcome.OK = true
	outcome.ExternalID = calendarID
	return outcome
}

func (s *Service) syncCalendarUpdate(ctx context.Context, ev *models.SessionEvent) EffectOutcome {
	if ev.CalendarEventID == "" {
		// Never synced; treat the update as a create.
		return s.syncCalendarCreate(ctx, ev)
	}

	outcome := EffectOutcome{Name: EffectCalendar, ExternalID: ev.CalendarEventID}
	account, err := s.repo.GetGoogleAccountByUserID(ev.UserID)
	if err != nil {
		outcome.Error = "google account not connected"
		return outcome
	}
	if err := s.calendar.UpdateEvent(ctx, account, ev); err != nil {
		log.Warnf("calendar update for session %d failed: %v", ev.ID, err)
		outcome.Error = err.Error()
		return outcome
	}
	outcome.OK = true
	return outcome
}

func (s *Service) syncCalendarDelete(ctx context.Context, ev *models.SessionEvent) EffectOutcome {
	outcome := EffectOutcome{Name: EffectCalendar, ExternalID: ev.CalendarEventID}
	if ev.CalendarEventID == "" {
		outcome.OK = true
		return outcome
	}

	account, err := s.repo.GetGoogleAccountByUserID(ev.UserID)
	if err != nil {
		outcome.Error = "google account not connected"
		return outcome
	}
	if err := s.calendar.DeleteEvent(ctx, account, ev.CalendarEventID); err != nil {
		log.Warnf("calendar delete for session %d failed: %v", ev.ID, err)
		outcome.Error = err.Error()
		return outcome
	}
	outcome.OK = true
	return outcome
}

func (s *Service) notifyClient(ctx context.Context, ev *models.SessionEvent, render func(*models.SessionEvent, string) string) EffectOutcome {
	outcome := EffectOutcome{Name: EffectWhatsApp}

	client, err := s.repo.GetClientByID(ev.ClientID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("client lookup for session %d failed: %v", ev.ID, err)
		}
		outcome.Error = "client not found"
		return outcome
	}
	if client.Phone == "" {
		outcome.Error = "client has no phone number"
		return outcome
	}

	messageID, err := s.messenger.SendMessage(ctx, client.Phone, render(ev, client.Name))
	if err != nil {
		log.Warnf("whatsapp notification for session %d failed: %v", ev.ID, err)
		outcome.Error = err.Error()
		return outcome
	}

	outcome.OK = true
	outcome.ExternalID = messageID
	return outcome
}
