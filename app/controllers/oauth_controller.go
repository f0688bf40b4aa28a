package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
	"github.com/StudioFlowHQ/StudioFlow/app/repository"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/database"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/session"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/usercontext"
)

// HandleOAuthBegin starts the Google flow.
func HandleOAuthBegin(c *fiber.Ctx) error {
	return gothfiber.BeginAuthHandler(c)
}

// HandleOAuthCallback completes the Google flow, logs the photographer in and
// stores the calendar tokens in connected_accounts.
func HandleOAuthCallback(c *fiber.Ctx) error {
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(fmt.Sprintf("OAuth failed: %v", err))
	}

	db := database.GetDB()
	repos := repository.GetGlobalRepositories()

	var appUser *models.User
	if u.Email != "" {
		appUser, err = repos.User.GetByEmail(u.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusInternalServerError).SendString(fmt.Sprintf("db error: %v", err))
		}
	}

	if appUser == nil {
		// Create new user; password is a random placeholder since validation
		// requires one (not used for login).
		placeholder := fmt.Sprintf("oauth_%d", time.Now().UnixNano())
		hash, _ := models.HashPassword(placeholder)
		email := u.Email
		if email == "" {
			// Ensure unique, non-empty email to satisfy unique index semantics in MySQL
			email = fmt.Sprintf("%s_%s@%s.oauth.local", u.Provider, u.UserID, u.Provider)
		}
		appUser = &models.User{
			Name:     firstNonEmpty(u.Name, u.NickName, u.Email, "User"),
			Email:    email,
			Password: hash,
			Role:     models.ROLE_PHOTOGRAPHER,
			Status:   models.STATUS_ACTIVE,
		}
		if err := repos.User.Create(appUser); err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString(fmt.Sprintf("create user failed: %v", err))
		}
		if _, err := repos.Subscription.GetOrCreateTrial(appUser.ID); err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("subscription init failed")
		}
	}

	// Store or refresh the calendar tokens.
	var exp *time.Time
	if !u.ExpiresAt.IsZero() {
		t := u.ExpiresAt
		exp = &t
	}
	account := &models.ConnectedAccount{
		UserID:            appUser.ID,
		Provider:          models.ProviderGoogle,
		ExternalAccountID: u.UserID,
		AccessToken:       u.AccessToken,
		RefreshToken:      u.RefreshToken,
		TokenExpiresAt:    exp,
		IsActive:          true,
	}
	if err := repos.ConnectedAccount.Upsert(account); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(fmt.Sprintf("link provider failed: %v", err))
	}

	// Create app session
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("session init failed")
	}
	sess.Set(AUTH_KEY, true)
	sess.Set(USER_ID, appUser.ID)
	sess.Set(USER_NAME, appUser.Name)
	sess.Set(USER_IS_ADMIN, appUser.Role == models.ROLE_ADMIN)
	if sub, err := repos.Subscription.GetByUserID(appUser.ID); err == nil {
		sess.Set(USER_PLAN, sub.Plan)
	}
	if err := sess.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("session save failed")
	}

	_ = db.Model(appUser).UpdateColumn("last_login_at", time.Now()).Error

	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleOAuthDisconnect removes the Google calendar link.
func HandleOAuthDisconnect(c *fiber.Ctx) error {
	uid := usercontext.GetUserID(c)
	if uid == 0 {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "login required")
	}

	repos := repository.GetGlobalRepositories()
	if err := repos.ConnectedAccount.Deactivate(uid, models.ProviderGoogle); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to disconnect")
	}
	return c.JSON(fiber.Map{"success": true})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
