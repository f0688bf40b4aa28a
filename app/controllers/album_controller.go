package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
	"github.com/StudioFlowHQ/StudioFlow/app/repository"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/env"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/jobqueue"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/mail"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/plans"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/usercontext"
)

type albumCreateRequest struct {
	EventID     uint    `json:"event_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unit_price"`
}

type albumImportRequest struct {
	RemoteDir string  `json:"remote_dir"`
	UnitPrice float64 `json:"unit_price"`
}

// loadOwnedAlbum fetches an album and verifies ownership. Missing and
// foreign albums are both reported as not found.
func loadOwnedAlbum(c *fiber.Ctx, id uint) (*models.Album, error) {
	userCtx := usercontext.GetUserContext(c)
	album, err := repository.GetGlobalRepositories().Album.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, jsonError(c, fiber.StatusNotFound, "not_found", "Album not found")
		}
		return nil, jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load album")
	}
	if album.UserID != userCtx.UserID {
		return nil, jsonError(c, fiber.StatusNotFound, "not_found", "Album not found")
	}
	return album, nil
}

// HandleAlbumList returns the photographer's albums.
func HandleAlbumList(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	albums, err := repository.GetGlobalRepositories().Album.GetByUserID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load albums")
	}
	return c.JSON(fiber.Map{"albums": albums})
}

// HandleAlbumCreate creates an (unpublished) album for one of the
// photographer's sessions.
func HandleAlbumCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repos := repository.GetGlobalRepositories()

	var req albumCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if req.Title == "" || req.EventID == 0 {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", "title and event_id are required")
	}

	ev, err := repos.Event.GetByID(req.EventID)
	if err != nil || ev.UserID != userCtx.UserID {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", "unknown session")
	}

	album := &models.Album{
		EventID:     req.EventID,
		UserID:      userCtx.UserID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := repos.Album.Create(album); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create album")
	}

	return c.Status(fiber.StatusCreated).JSON(album)
}

// HandleAlbumGet returns one album with its photos.
func HandleAlbumGet(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid album id")
	}
	album, ferr := loadOwnedAlbum(c, id)
	if album == nil {
		return ferr
	}
	return c.JSON(album)
}

// HandleAlbumPublish makes the album publicly reachable via its share token.
// The active-album cap of the photographer's plan applies.
func HandleAlbumPublish(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repos := repository.GetGlobalRepositories()

	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid album id")
	}
	album, ferr := loadOwnedAlbum(c, id)
	if album == nil {
		return ferr
	}

	if !album.IsActive {
		sub, err := repos.Subscription.GetByUserID(userCtx.UserID)
		if err != nil {
			return jsonError(c, fiber.StatusForbidden, "plan_limit", "No active subscription")
		}
		activeCount, err := repos.Album.CountActiveByUserID(userCtx.UserID)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to check album limit")
		}
		if !plans.CanActivateAlbum(sub, activeCount) {
			return jsonError(c, fiber.StatusForbidden, "plan_limit", "Active album limit reached for your plan")
		}

		album.IsActive = true
		if err := repos.Album.Update(album); err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to publish album")
		}

		// Best-effort client notification.
		go notifyAlbumPublished(album)
	}

	return c.JSON(fiber.Map{
		"id":          album.ID,
		"is_active":   album.IsActive,
		"share_token": album.ShareToken,
		"share_url":   shareURL(album.ShareToken),
	})
}

// HandleAlbumUnpublish hides the album from the public share surface.
func HandleAlbumUnpublish(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid album id")
	}
	album, ferr := loadOwnedAlbum(c, id)
	if album == nil {
		return ferr
	}

	if album.IsActive {
		album.IsActive = false
		if err := repository.GetGlobalRepositories().Album.Update(album); err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to unpublish album")
		}
	}

	return c.JSON(fiber.Map{"id": album.ID, "is_active": album.IsActive})
}

// HandleAlbumImport enqueues an FTP import run for the album. Requires a
// plan with FTP import.
func HandleAlbumImport(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repos := repository.GetGlobalRepositories()

	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid album id")
	}
	album, ferr := loadOwnedAlbum(c, id)
	if album == nil {
		return ferr
	}

	sub, err := repos.Subscription.GetByUserID(userCtx.UserID)
	if err != nil || !plans.CanImportFromFTP(sub) {
		return jsonError(c, fiber.StatusForbidden, "plan_limit", "FTP import is not included in your plan")
	}

	var req albumImportRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	payload := jobqueue.FTPImportJobPayload{
		AlbumID:   album.ID,
		UserID:    userCtx.UserID,
		RemoteDir: strings.TrimSpace(req.RemoteDir),
		UnitPrice: req.UnitPrice,
	}
	job, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeFTPImport, payload.ToMap())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to enqueue import")
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"job_id": job.ID})
}

// HandleAlbumPhotoDelete soft-deletes a photo and enqueues removal of its
// stored objects.
func HandleAlbumPhotoDelete(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	albumID, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid album id")
	}
	photoID, err := parseIDParam(c, "photoId")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid photo id")
	}

	album, ferr := loadOwnedAlbum(c, albumID)
	if album == nil {
		return ferr
	}

	photo, err := repos.Photo.GetByID(photoID)
	if err != nil || photo.AlbumID != album.ID {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Photo not found")
	}

	if err := repos.Photo.Delete(photo.ID); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to delete photo")
	}

	payload := jobqueue.PhotoDeleteJobPayload{
		PhotoID:    photo.ID,
		AlbumID:    album.ID,
		ObjectKeys: []string{photo.OriginalPath, photo.ThumbnailPath, photo.WatermarkPath},
	}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypePhotoDelete, payload.ToMap()); err != nil {
		log.Warnf("failed to enqueue object cleanup for photo %d: %v", photo.ID, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

func shareURL(token string) string {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}
	return base + "/s/" + token
}

func notifyAlbumPublished(album *models.Album) {
	repos := repository.GetGlobalRepositories()
	ev, err := repos.Event.GetByID(album.EventID)
	if err != nil || ev.Client.Email == "" {
		return
	}
	if err := mail.SendAlbumPublishedMail(ev.Client.Email, album, shareURL(album.ShareToken)); err != nil {
		log.Warnf("album published mail for album %d failed: %v", album.ID, err)
	}
}
