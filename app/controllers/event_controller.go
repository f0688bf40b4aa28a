package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
	"github.com/StudioFlowHQ/StudioFlow/app/repository"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/booking"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/database"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/usercontext"
)

type eventRequest struct {
	ClientID    uint      `json:"client_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

func bookingService() *booking.Service {
	return booking.NewServiceFromDB(database.GetDB())
}

// HandleEventList returns the photographer's sessions in a time range.
// Defaults to the next 90 days.
func HandleEventList(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repos := repository.GetGlobalRepositories()

	from := time.Now().AddDate(0, 0, -7)
	to := time.Now().AddDate(0, 3, 0)
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			from = t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			to = t
		}
	}

	events, err := repos.Event.GetByUserID(userCtx.UserID, from, to)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load sessions")
	}

	return c.JSON(fiber.Map{"events": events})
}

// HandleEventCreate books a session. Calendar and WhatsApp sync run as
// best-effort side effects; their outcomes are reported but never fail the
// booking.
func HandleEventCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if req.Title == "" || req.StartTime.IsZero() || req.EndTime.IsZero() {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", "title, start_time and end_time are required")
	}
	if !req.EndTime.After(req.StartTime) {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", "end_time must be after start_time")
	}

	if req.ClientID != 0 {
		client, err := repository.GetGlobalRepositories().Client.GetByID(req.ClientID)
		if err != nil || client.UserID != userCtx.UserID {
			return jsonError(c, fiber.StatusBadRequest, "validation_failed", "unknown client")
		}
	}

	ev := &models.SessionEvent{
		UserID:      userCtx.UserID,
		ClientID:    req.ClientID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}

	result, err := bookingService().CreateBooking(c.Context(), ev)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create session")
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleEventUpdate edits a session and propagates the change.
func HandleEventUpdate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid session id")
	}

	repos := repository.GetGlobalRepositories()
	ev, err := repos.Event.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Session not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load session")
	}
	if ev.UserID != userCtx.UserID {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Session not found")
	}

	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if req.Title != "" {
		ev.Title = req.Title
	}
	ev.Description = req.Description
	ev.Location = req.Location
	if !req.StartTime.IsZero() {
		ev.StartTime = req.StartTime
	}
	if !req.EndTime.IsZero() {
		ev.EndTime = req.EndTime
	}
	if !ev.EndTime.After(ev.StartTime) {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", "end_time must be after start_time")
	}

	result, err := bookingService().UpdateBooking(c.Context(), ev)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update session")
	}

	return c.JSON(result)
}

// HandleEventCancel cancels a session, deletes the calendar event and
// notifies the client.
func HandleEventCancel(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid session id")
	}

	repos := repository.GetGlobalRepositories()
	ev, err := repos.Event.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Session not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load session")
	}
	if ev.UserID != userCtx.UserID {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Session not found")
	}

	result, err := bookingService().CancelBooking(c.Context(), id)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to cancel session")
	}

	return c.JSON(result)
}
