package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/StudioFlowHQ/StudioFlow/app/controllers"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/middleware"
)

type ApiRouter struct {
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max: 120,
	}))

	// Provider notification endpoints. Unauthenticated: Mercado Pago does not
	// sign these, the handler verifies every payload against the provider API.
	webhooks := api.Group("/webhooks")
	webhooks.Post("/mercadopago", controllers.HandleMercadoPagoWebhook)
	webhooks.Post("/mercadopago/subscription", controllers.HandleSubscriptionWebhook)

	// Studio integration API, authenticated by API key.
	v1 := api.Group("/v1", middleware.APIKeyAuthMiddleware())
	v1.Get("/account", controllers.HandleAPIAccountInfo)
	v1.Get("/albums", controllers.HandleAPIAlbumList)
	v1.Get("/orders", controllers.HandleAPIOrderList)
	v1.Get("/webhook-logs", controllers.HandleAPIWebhookLogList)
	v1.Get("/stats", controllers.HandleAPIStats)
}
