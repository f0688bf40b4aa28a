package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
)

type fakeRepo struct {
	events      map[uint]*models.SessionEvent
	clients     map[uint]*models.Client
	accounts    map[uint]*models.ConnectedAccount
	nextEventID uint
	createErr   error
	updateErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		events:      make(map[uint]*models.SessionEvent),
		clients:     make(map[uint]*models.Client),
		accounts:    make(map[uint]*models.ConnectedAccount),
		nextEventID: 1,
	}
}

func (r *fakeRepo) CreateEvent(ev *models.SessionEvent) error {
	if r.createErr != nil {
		return r.createErr
	}
	ev.ID = r.nextEventID
	r.nextEventID++
	copied := *ev
	r.events[ev.ID] = &copied
	return nil
}

func (r *fakeRepo) UpdateEvent(ev *models.SessionEvent) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	copied := *ev
	r.events[ev.ID] = &copied
	return nil
}

func (r *fakeRepo) GetEventByID(id uint) (*models.SessionEvent, error) {
	ev, ok := r.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *ev
	return &copied, nil
}

func (r *fakeRepo) GetClientByID(id uint) (*models.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *fakeRepo) GetGoogleAccountByUserID(userID uint) (*models.ConnectedAccount, error) {
	a, ok := r.accounts[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *fakeRepo) SetCalendarEventID(eventID uint, calendarEventID string) error {
	ev, ok := r.events[eventID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	ev.CalendarEventID = calendarEventID
	return nil
}

type fakeCalendar struct {
	createID  string
	createErr error
	updateErr error
	deleteErr error
	created   int
	updated   int
	deleted   []string
}

func (c *fakeCalendar) CreateEvent(_ context.Context, _ *models.ConnectedAccount, _ *models.SessionEvent) (string, error) {
	c.created++
	if c.createErr != nil {
		return "", c.createErr
	}
	return c.createID, nil
}

func (c *fakeCalendar) UpdateEvent(_ context.Context, _ *models.ConnectedAccount, _ *models.SessionEvent) error {
	c.updated++
	return c.updateErr
}

func (c *fakeCalendar) DeleteEvent(_ context.Context, _ *models.ConnectedAccount, id string) error {
	c.deleted = append(c.deleted, id)
	return c.deleteErr
}

type fakeMessenger struct {
	sendErr  error
	messages []string
	phones   []string
}

func (m *fakeMessenger) SendMessage(_ context.Context, phone, message string) (string, error) {
	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.phones = append(m.phones, phone)
	m.messages = append(m.messages, message)
	return "wamid.1", nil
}

func effectByName(t *testing.T, effects []EffectOutcome, name string) EffectOutcome {
	t.Helper()
	for _, e := range effects {
		if e.Name == name {
			return e
		}
	}
	t.Fatalf("no %q effect in %v", name, effects)
	return EffectOutcome{}
}

func testEvent() *models.SessionEvent {
	start := time.Date(2026, 9, 12, 14, 0, 0, 0, time.UTC)
	return &models.SessionEvent{
		UserID:    1,
		ClientID:  10,
		Title:     "Ensaio gestante",
		Location:  "Estúdio Central",
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
	}
}

func TestCreateBooking_SyncsCalendarAndWhatsApp(t *testing.T) {
	repo := newFakeRepo()
	repo.clients[10] = &models.Client{ID: 10, Name: "Ana", Phone: "+5511999990000"}
	repo.accounts[1] = &models.ConnectedAccount{UserID: 1, Provider: models.ProviderGoogle, AccessToken: "tok"}
	cal := &fakeCalendar{createID: "gcal-evt-1"}
	msg := &fakeMessenger{}
	svc := NewService(repo, cal, msg)

	result, err := svc.CreateBooking(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if result.Event.ID == 0 {
		t.Fatal("event was not persisted")
	}
	if result.Event.Status != models.EventStatusScheduled {
		t.Fatalf("status = %q, want scheduled", result.Event.Status)
	}

	calEffect := effectByName(t, result.Effects, EffectCalendar)
	if !calEffect.OK || calEffect.ExternalID != "gcal-evt-1" {
		t.Fatalf("calendar effect = %+v", calEffect)
	}
	if repo.events[result.Event.ID].CalendarEventID != "gcal-evt-1" {
		t.Fatal("calendar event id was not stored")
	}

	waEffect := effectByName(t, result.Effects, EffectWhatsApp)
	if !waEffect.OK || waEffect.ExternalID != "wamid.1" {
		t.Fatalf("whatsapp effect = %+v", waEffect)
	}
	if len(msg.phones) != 1 || msg.phones[0] != "+5511999990000" {
		t.Fatalf("phones = %v", msg.phones)
	}
}

func TestCreateBooking_SideEffectFailuresDoNotFailBooking(t *testing.T) {
	repo := newFakeRepo()
	repo.clients[10] = &models.Client{ID: 10, Name: "Ana", Phone: "+5511999990000"}
	repo.accounts[1] = &models.ConnectedAccount{UserID: 1, Provider: models.ProviderGoogle, AccessToken: "tok"}
	cal := &fakeCalendar{createErr: errors.New("calendar api down")}
	msg := &fakeMessenger{sendErr: errors.New("gateway down")}
	svc := NewService(repo, cal, msg)

	result, err := svc.CreateBooking(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("CreateBooking should succeed despite side effects, got %v", err)
	}
	if len(repo.events) != 1 {
		t.Fatal("event was not persisted")
	}
	for _, effect := range result.Effects {
		if effect.OK {
			t.Fatalf("effect %q should have failed", effect.Name)
		}
		if effect.Error == "" {
			t.Fatalf("effect %q missing error detail", effect.Name)
		}
	}
}

func TestCreateBooking_NoGoogleAccountNoPhone(t *testing.T) {
	repo := newFakeRepo()
	repo.clients[10] = &models.Client{ID: 10, Name: "Ana"}
	cal := &fakeCalendar{createID: "never"}
	msg := &fakeMessenger{}
	svc := NewService(repo, cal, msg)

	result, err := svc.CreateBooking(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if cal.created != 0 {
		t.Fatal("calendar should not be called without a connected account")
	}
	if len(msg.messages) != 0 {
		t.Fatal("whatsapp should not be called without a phone number")
	}
	calEffect := effectByName(t, result.Effects, EffectCalendar)
	if calEffect.OK {
		t.Fatalf("calendar effect = %+v", calEffect)
	}
	waEffect := effectByName(t, result.Effects, EffectWhatsApp)
	if waEffect.OK || waEffect.Error != "client has no phone number" {
		t.Fatalf("whatsapp effect = %+v", waEffect)
	}
}

func TestCreateBooking_PrimaryFailureReturnsError(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = errors.New("db down")
	cal := &fakeCalendar{}
	msg := &fakeMessenger{}
	svc := NewService(repo, cal, msg)

	if _, err := svc.CreateBooking(context.Background(), testEvent()); err == nil {
		t.Fatal("expected error from primary insert")
	}
	if cal.created != 0 || len(msg.messages) != 0 {
		t.Fatal("side effects must not run when the primary write fails")
	}
}

func TestUpdateBooking_CreatesCalendarEventWhenMissing(t *testing.T) {
	repo := newFakeRepo()
	repo.clients[10] = &models.Client{ID: 10, Name: "Ana", Phone: "+5511999990000"}
	repo.accounts[1] = &models.ConnectedAccount{UserID: 1, Provider: models.ProviderGoogle, AccessToken: "tok"}
	cal := &fakeCalendar{createID: "gcal-evt-2"}
	msg := &fakeMessenger{}
	svc := NewService(repo, cal, msg)

	ev := testEvent()
	ev.ID = 5
	ev.Status = models.EventStatusScheduled
	repo.events[5] = ev

	result, err := svc.UpdateBooking(context.Background(), ev)
	if err != nil {
		t.Fatalf("UpdateBooking: %v", err)
	}
	if cal.created != 1 || cal.updated != 0 {
		t.Fatalf("created=%d updated=%d, want create fallback", cal.created, cal.updated)
	}
	calEffect := effectByName(t, result.Effects, EffectCalendar)
	if !calEffect.OK || calEffect.ExternalID != "gcal-evt-2" {
		t.Fatalf("calendar effect = %+v", calEffect)
	}
}

func TestUpdateBooking_UpdatesExistingCalendarEvent(t *testing.T) {
	repo := newFakeRepo()
	repo.clients[10] = &models.Client{ID: 10, Name: "Ana", Phone: "+5511999990000"}
	repo.accounts[1] = &models.ConnectedAccount{UserID: 1, Provider: models.ProviderGoogle, AccessToken: "tok"}
	cal := &fakeCalendar{}
	msg := &fakeMessenger{}
	svc := NewService(repo, cal, msg)

	ev := testEvent()
	ev.ID = 5
	ev.CalendarEventID = "gcal-evt-1"
	repo.events[5] = ev

	result, err := svc.UpdateBooking(context.Background(), ev)
	if err != nil {
		t.Fatalf("UpdateBooking: %v", err)
	}
	if cal.updated != 1 || cal.created != 0 {
		t.Fatalf("created=%d updated=%d, want one update", cal.created, cal.updated)
	}
	calEffect := effectByName(t, result.Effects, EffectCalendar)
	if !calEffect.OK || calEffect.ExternalID != "gcal-evt-1" {
		t.Fatalf("calendar effect = %+v", calEffect)
	}
}

func TestCancelBooking_MarksCancelledAndDeletesCalendarEvent(t *testing.T) {
	repo := newFakeRepo()
	repo.clients[10] = &models.Client{ID: 10, Name: "Ana", Phone: "+5511999990000"}
	repo.accounts[1] = &models.ConnectedAccount{UserID: 1, Provider: models.ProviderGoogle, AccessToken: "tok"}
	cal := &fakeCalendar{}
	msg := &fakeMessenger{}
	svc := NewService(repo, cal, msg)

	ev := testEvent()
	ev.ID = 7
	ev.CalendarEventID = "gcal-evt-9"
	repo.events[7] = ev

	result, err := svc.CancelBooking(context.Background(), 7)
	if err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if result.Event.Status != models.EventStatusCancelled {
		t.Fatalf("status = %q, want cancelled", result.Event.Status)
	}
	if repo.events[7].Status != models.EventStatusCancelled {
		t.Fatal("cancellation not persisted")
	}
	if len(cal.deleted) != 1 || cal.deleted[0] != "gcal-evt-9" {
		t.Fatalf("deleted = %v", cal.deleted)
	}
	waEffect := effectByName(t, result.Effects, EffectWhatsApp)
	if !waEffect.OK {
		t.Fatalf("whatsapp effect = %+v", waEffect)
	}
}

func TestCancelBooking_UnknownEvent(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeCalendar{}, &fakeMessenger{})
	if _, err := svc.CancelBooking(context.Background(), 99); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want gorm.ErrRecordNotFound", err)
	}
}
