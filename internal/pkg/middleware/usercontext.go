package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/StudioFlowHQ/StudioFlow/app/controllers"
	"github.com/StudioFlowHQ/StudioFlow/app/models"
	"github.com/StudioFlowHQ/StudioFlow/app/repository"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/database"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/session"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the complete user context for every request
// This centralizes user session handling and eliminates code duplication
func UserContextMiddleware(c *fiber.Ctx) error {
	// Avoid interfering with Goth/Fiber session handling on OAuth routes.
	// Goth uses its own fiber session store and relies on per-request locals.
	// We skip our app session on /auth/* to prevent cross-store collisions.
	if strings.HasPrefix(c.Path(), "/auth/") {
		return c.Next()
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		setAnonymous(c)
		return c.Next()
	}

	userID, ok := sess.Get(controllers.USER_ID).(uint)
	if !ok || userID == 0 {
		setAnonymous(c)
		return c.Next()
	}

	username, _ := sess.Get(controllers.USER_NAME).(string)
	isAdmin := sess.Get(controllers.USER_IS_ADMIN)

	// Determine plan with session-first strategy
	plan, _ := sess.Get(controllers.USER_PLAN).(string)
	if plan == "" {
		plan = models.PlanTrial
		if db := database.GetDB(); db != nil {
			repo := repository.NewSubscriptionRepository(db)
			if sub, err := repo.GetByUserID(userID); err == nil && sub.Plan != "" {
				plan = sub.Plan
			}
		}
	}

	admin := false
	if b, ok := isAdmin.(bool); ok {
		admin = b
	}

	userCtx := usercontext.UserContext{
		UserID:     userID,
		Username:   username,
		IsLoggedIn: true,
		IsAdmin:    admin,
		Plan:       plan,
	}
	c.Locals("USER_CONTEXT", userCtx)

	// Legacy compatibility locals
	c.Locals(usercontext.KeyFromProtected, true)
	c.Locals(usercontext.KeyUserID, userCtx.UserID)
	c.Locals(usercontext.KeyUsername, userCtx.Username)
	c.Locals(usercontext.KeyIsAdmin, userCtx.IsAdmin)
	c.Locals(controllers.FROM_PROTECTED, true)
	c.Locals(controllers.USER_IS_ADMIN, userCtx.IsAdmin)

	return c.Next()
}

func setAnonymous(c *fiber.Ctx) {
	c.Locals("USER_CONTEXT", usercontext.UserContext{
		IsLoggedIn: false,
		IsAdmin:    false,
	})
	c.Locals(usercontext.KeyFromProtected, false)
	c.Locals(controllers.FROM_PROTECTED, false)
	c.Locals(controllers.USER_IS_ADMIN, false)
}
