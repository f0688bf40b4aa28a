package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
	"github.com/StudioFlowHQ/StudioFlow/app/repository"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/database"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/session"
)

type registerRequest struct {
	Name       string `json:"name"`
	StudioName string `json:"studio_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleAuthRegister creates a photographer account and its trial subscription.
func HandleAuthRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}
	user.StudioName = req.StudioName

	repos := repository.GetGlobalRepositories()
	if err := repos.User.Create(user); err != nil {
		return jsonError(c, fiber.StatusConflict, "conflict", "Could not create account")
	}

	// Every new account starts on a trial subscription.
	sub, err := repos.Subscription.GetOrCreateTrial(user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to initialize subscription")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":            user.ID,
		"name":          user.Name,
		"email":         user.Email,
		"plan":          sub.Plan,
		"trial_ends_at": formatTimePtr(sub.TrialEndsAt),
		"created_at":    user.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// HandleAuthLogin validates credentials and establishes the web session.
func HandleAuthLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	// notice: in production you should not inform the user
	// with detailed messages about login failures
	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "There is a problem with the login process")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Login failed")
	}

	if !models.CheckPasswordHash(req.Password, user.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "There is a problem with the login process")
	}

	if !user.IsActive() {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "Account disabled")
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Session unavailable")
	}

	plan := models.PlanTrial
	if sub, err := repos.Subscription.GetByUserID(user.ID); err == nil {
		plan = sub.Plan
	}

	sess.Set(AUTH_KEY, true)
	sess.Set(USER_ID, user.ID)
	sess.Set(USER_NAME, user.Name)
	sess.Set(USER_IS_ADMIN, user.Role == models.ROLE_ADMIN)
	sess.Set(USER_PLAN, plan)

	if err := sess.Save(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Session save failed")
	}

	database.GetDB().Model(user).Update("last_login_at", time.Now())

	return c.JSON(fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"plan":  plan,
	})
}

// HandleAuthLogout destroys the web session.
func HandleAuthLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		_ = sess.Destroy()
	}

	c.Locals(FROM_PROTECTED, false)

	return c.JSON(fiber.Map{"success": true})
}
