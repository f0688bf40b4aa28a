package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
	"github.com/StudioFlowHQ/StudioFlow/app/repository"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/env"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/mercadopago"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/metrics/counter"
)

type checkoutRequest struct {
	BuyerEmail string `json:"buyer_email"`
}

type selectionRequest struct {
	PhotoID uint `json:"photo_id"`
}

// loadSharedAlbum resolves a share token to a publicly visible album.
// Inactive and unknown tokens are indistinguishable from outside.
func loadSharedAlbum(c *fiber.Ctx) (*models.Album, error) {
	token := strings.TrimSpace(c.Params("token"))
	if token == "" {
		return nil, jsonError(c, fiber.StatusNotFound, "not_found", "Album not found")
	}

	album, err := repository.GetGlobalRepositories().Album.GetByShareToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, jsonError(c, fiber.StatusNotFound, "not_found", "Album not found")
		}
		return nil, jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load album")
	}
	if !album.IsActive {
		return nil, jsonError(c, fiber.StatusNotFound, "not_found", "Album not found")
	}
	return album, nil
}

// HandleShareAlbumView serves the public album page data. Clients only ever
// see the watermarked variants until the album is paid.
func HandleShareAlbumView(c *fiber.Ctx) error {
	album, ferr := loadSharedAlbum(c)
	if album == nil {
		return ferr
	}

	if err := counter.AddAlbumView(album.ID); err != nil {
		log.Warnf("album view counter for album %d failed: %v", album.ID, err)
	}

	photos := make([]fiber.Map, 0, len(album.Photos))
	for _, p := range album.Photos {
		path := p.WatermarkPath
		if album.IsPaid {
			path = p.OriginalPath
		}
		photos = append(photos, fiber.Map{
			"id":          p.ID,
			"file_name":   p.FileName,
			"path":        path,
			"thumbnail":   p.ThumbnailPath,
			"unit_price":  p.UnitPrice,
			"is_selected": p.IsSelected,
		})
	}

	return c.JSON(fiber.Map{
		"title":       album.Title,
		"description": album.Description,
		"is_paid":     album.IsPaid,
		"photos":      photos,
	})
}

// HandleSharePhotoToggle flips a photo's selection state. Selection is
// frozen once the album is paid.
func HandleSharePhotoToggle(c *fiber.Ctx) error {
	album, ferr := loadSharedAlbum(c)
	if album == nil {
		return ferr
	}
	if album.IsPaid {
		return jsonError(c, fiber.StatusConflict, "album_paid", "Selection is locked after payment")
	}

	var req selectionRequest
	if err := c.BodyParser(&req); err != nil || req.PhotoID == 0 {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "photo_id is required")
	}

	repos := repository.GetGlobalRepositories()
	photo, err := repos.Photo.GetByID(req.PhotoID)
	if err != nil || photo.AlbumID != album.ID {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Photo not found")
	}

	photo.IsSelected = !photo.IsSelected
	if err := repos.Photo.Update(photo); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update selection")
	}

	return c.JSON(fiber.Map{"id": photo.ID, "is_selected": photo.IsSelected})
}

// HandleShareCheckout turns the current selection into an order and creates
// the provider checkout. The client is redirected to the returned init_point.
// The provider payment id only becomes known at webhook time and is matched
// back to the order through its external reference.
func HandleShareCheckout(c *fiber.Ctx) error {
	album, ferr := loadSharedAlbum(c)
	if album == nil {
		return ferr
	}
	if album.IsPaid {
		return jsonError(c, fiber.StatusConflict, "album_paid", "Album is already paid")
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	repos := repository.GetGlobalRepositories()
	selected, err := repos.Photo.GetSelectedByAlbumID(album.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load selection")
	}
	if len(selected) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "empty_selection", "Select at least one photo before checkout")
	}

	total := 0.0
	photoIDs := make([]interface{}, 0, len(selected))
	for _, p := range selected {
		total += p.UnitPrice
		photoIDs = append(photoIDs, p.ID)
	}

	photoIDsDoc, err := json.Marshal(map[string]interface{}{"ids": photoIDs})
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create order")
	}

	order := &models.Order{
		EventID:     album.EventID,
		BuyerEmail:  strings.TrimSpace(req.BuyerEmail),
		PhotoIDs:    models.JSON(photoIDsDoc),
		TotalAmount: total,
	}
	if err := repos.Order.Create(order); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create order")
	}
	// The order id doubles as the provider external reference, the exact key
	// the webhook falls back to when the payment id is not yet known.
	order.ExternalReference = models.NormalizeExternalReference(order.ID)

	account, err := repos.ConnectedAccount.GetByUserAndProvider(album.UserID, models.ProviderMercadoPago)
	if err != nil {
		return jsonError(c, fiber.StatusBadGateway, "provider_unavailable", "The studio has no payment account connected")
	}

	preference, err := mercadopago.NewClientFromEnv().CreatePreference(c.Context(), account.AccessToken, mercadopago.PreferenceInput{
		Items: []mercadopago.PreferenceItem{{
			Title:     fmt.Sprintf("Fotos: %s (%d)", album.Title, len(selected)),
			Quantity:  1,
			UnitPrice: total,
		}},
		ExternalReference: order.ExternalReference,
		PayerEmail:        order.BuyerEmail,
		NotificationURL:   paymentWebhookURL(album.UserID),
		Metadata: map[string]interface{}{
			"order_id": order.ID,
			"album_id": album.ID,
		},
	})
	if err != nil {
		log.Errorf("preference create for order %s failed: %v", order.ID, err)
		return jsonError(c, fiber.StatusBadGateway, "provider_unavailable", "Payment provider request failed")
	}

	// The preference id stands in until the webhook corrects it to the
	// canonical payment id.
	order.PaymentIntentID = preference.ID
	if err := repos.Order.Update(order); err != nil {
		log.Warnf("order %s reference update failed: %v", order.ID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order_id":   order.ID,
		"amount":     order.TotalAmount,
		"init_point": preference.InitPoint,
	})
}

// paymentWebhookURL carries the studio id so the webhook can resolve the
// right credentials before fetching the payment.
func paymentWebhookURL(userID uint) string {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}
	return fmt.Sprintf("%s/api/webhooks/mercadopago?studio=%d", base, userID)
}
