package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
	"github.com/StudioFlowHQ/StudioFlow/app/repository"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/plans"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/usercontext"
)

type clientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

// HandleClientList returns the photographer's clients, optionally filtered.
func HandleClientList(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repos := repository.GetGlobalRepositories()

	var (
		clients []models.Client
		err     error
	)
	if query := c.Query("q"); query != "" {
		clients, err = repos.Client.Search(userCtx.UserID, query)
	} else {
		clients, err = repos.Client.GetByUserID(userCtx.UserID)
	}
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load clients")
	}

	return c.JSON(fiber.Map{"clients": clients})
}

// HandleClientCreate adds a client, enforcing the plan's client limit.
func HandleClientCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repos := repository.GetGlobalRepositories()

	count, err := repos.Client.CountByUserID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to check client limit")
	}
	if limits := plans.LimitsFor(plans.Normalize(userCtx.Plan)); limits.MaxClients > 0 && count >= int64(limits.MaxClients) {
		return jsonError(c, fiber.StatusForbidden, "plan_limit", "Client limit reached for your plan")
	}

	var req clientRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	client := &models.Client{
		UserID: userCtx.UserID,
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Notes:  req.Notes,
	}
	if err := repos.Client.Create(client); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", "Could not create client")
	}

	return c.Status(fiber.StatusCreated).JSON(client)
}

// HandleClientUpdate edits one of the photographer's clients.
func HandleClientUpdate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid client id")
	}

	repos := repository.GetGlobalRepositories()
	client, err := repos.Client.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Client not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load client")
	}
	if client.UserID != userCtx.UserID {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Client not found")
	}

	var req clientRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if req.Name != "" {
		client.Name = req.Name
	}
	client.Email = req.Email
	client.Phone = req.Phone
	client.Notes = req.Notes

	if err := repos.Client.Update(client); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update client")
	}

	return c.JSON(client)
}

// HandleClientDelete removes a client.
func HandleClientDelete(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid client id")
	}

	repos := repository.GetGlobalRepositories()
	client, err := repos.Client.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Client not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load client")
	}
	if client.UserID != userCtx.UserID {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Client not found")
	}

	if err := repos.Client.Delete(id); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to delete client")
	}

	return c.JSON(fiber.Map{"success": true})
}
