package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
	"github.com/StudioFlowHQ/StudioFlow/app/repository"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/jobqueue"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/metrics/counter"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/usercontext"
)

type apiKeyCreateRequest struct {
	Label string `json:"label"`
}

// HandleAPIAccountInfo returns the authenticated studio's account summary.
func HandleAPIAccountInfo(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repos := repository.GetGlobalRepositories()

	user, err := repos.User.GetByID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load account")
	}

	resp := fiber.Map{
		"id":          user.ID,
		"name":        user.Name,
		"email":       user.Email,
		"studio_name": user.StudioName,
		"plan":        userCtx.Plan,
	}
	if sub, err := repos.Subscription.GetByUserID(user.ID); err == nil {
		resp["subscription_status"] = sub.Status
		resp["trial_ends_at"] = formatTimePtr(sub.TrialEndsAt)
		resp["expires_at"] = formatTimePtr(sub.ExpiresAt)
	}

	return c.JSON(resp)
}

// HandleAPIKeyCreate issues a new API key. The plaintext key appears in this
// response only; the database keeps the hash.
func HandleAPIKeyCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req apiKeyCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	key, err := models.GenerateAPIKey()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to generate key")
	}

	access := &models.ApiAccess{
		UserID:   userCtx.UserID,
		Label:    strings.TrimSpace(req.Label),
		KeyHash:  models.HashAPIKey(key),
		IsActive: true,
	}
	if err := repository.GetGlobalRepositories().ApiAccess.Create(access); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to store key")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      access.ID,
		"label":   access.Label,
		"api_key": key,
	})
}

// HandleAPIKeyList lists the studio's API keys without hashes.
func HandleAPIKeyList(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	keys, err := repository.GetGlobalRepositories().ApiAccess.ListByUserID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load keys")
	}

	out := make([]fiber.Map, 0, len(keys))
	for _, k := range keys {
		out = append(out, fiber.Map{
			"id":           k.ID,
			"label":        k.Label,
			"is_active":    k.IsActive,
			"last_used_at": formatTimePtr(k.LastUsedAt),
			"created_at":   k.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"keys": out})
}

// HandleAPIKeyDeactivate revokes one of the studio's API keys.
func HandleAPIKeyDeactivate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid key id")
	}
	if err := repository.GetGlobalRepositories().ApiAccess.Deactivate(id, userCtx.UserID); err != nil {
		return jsonError(c, fiber.StatusNotFound, "not_found", "API key not found")
	}

	return c.JSON(fiber.Map{"success": true})
}

// HandleAPIOrderList lists the studio's orders for integrations.
func HandleAPIOrderList(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	offset, limit := paginationParams(c)

	orders, err := repository.GetGlobalRepositories().Order.ListByUserID(userCtx.UserID, offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load orders")
	}
	return c.JSON(fiber.Map{"orders": orders, "offset": offset, "limit": limit})
}

// HandleAPIAlbumList lists the studio's albums for integrations.
func HandleAPIAlbumList(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	albums, err := repository.GetGlobalRepositories().Album.GetByUserID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load albums")
	}
	return c.JSON(fiber.Map{"albums": albums})
}

// HandleAPIWebhookLogList exposes the webhook audit trail for manual
// reconciliation, optionally filtered by event type (e.g. payment_orphan).
func HandleAPIWebhookLogList(c *fiber.Ctx) error {
	offset, limit := paginationParams(c)

	var (
		logs []models.WebhookLog
		err  error
	)
	repos := repository.GetGlobalRepositories()
	if eventType := strings.TrimSpace(c.Query("event_type")); eventType != "" {
		logs, err = repos.WebhookLog.ListByEventType(eventType, offset, limit)
	} else {
		logs, err = repos.WebhookLog.List(offset, limit)
	}
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load webhook logs")
	}

	return c.JSON(fiber.Map{"logs": logs, "offset": offset, "limit": limit})
}

// HandleAPIStats reports webhook counters and job queue depth.
func HandleAPIStats(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	stats := fiber.Map{}
	if results, err := counter.GetWebhookResults(); err == nil {
		stats["webhook_results"] = results
	} else {
		log.Warnf("webhook counter read failed: %v", err)
	}

	succeeded, _ := repos.WebhookLog.CountByStatus(models.WebhookStatusSuccess)
	failed, _ := repos.WebhookLog.CountByStatus(models.WebhookStatusFailed)
	stats["webhook_log_success"] = succeeded
	stats["webhook_log_failed"] = failed

	manager := jobqueue.GetManager()
	if manager.IsRunning() {
		ctx := c.Context()
		queue := manager.GetQueue()
		if size, err := queue.GetQueueSize(ctx); err == nil {
			stats["queue_pending"] = size
		}
		if size, err := queue.GetProcessingSize(ctx); err == nil {
			stats["queue_processing"] = size
		}
		if jobStats, err := queue.GetJobStats(ctx); err == nil {
			stats["job_stats"] = jobStats
		}
	}

	return c.JSON(stats)
}

func paginationParams(c *fiber.Ctx) (offset, limit int) {
	limit = 50
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}
	return offset, limit
}
