package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/StudioFlowHQ/StudioFlow/app/controllers"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/middleware"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/oauth"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/session"
)

type HttpRouter struct {
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	h.registerAuthRoutes(app)
	h.registerShareRoutes(app)
	h.registerStudioRoutes(app)
}

func (h HttpRouter) registerAuthRoutes(app *fiber.App) {
	app.Post("/auth/register", controllers.HandleAuthRegister)
	app.Post("/auth/login", controllers.HandleAuthLogin)
	app.Post("/auth/logout", controllers.HandleAuthLogout)

	app.Get("/auth/:provider", controllers.HandleOAuthBegin)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)
	app.Post("/auth/:provider/disconnect", middleware.RequireAPISessionAuth, controllers.HandleOAuthDisconnect)
}

// registerShareRoutes wires the public client-facing album surface. No auth:
// the share token is the capability.
func (h HttpRouter) registerShareRoutes(app *fiber.App) {
	share := app.Group("/s")
	share.Get("/:token", controllers.HandleShareAlbumView)
	share.Post("/:token/selection", controllers.HandleSharePhotoToggle)
	share.Post("/:token/order", controllers.HandleShareCheckout)
}

// registerStudioRoutes wires the session-authenticated studio application.
func (h HttpRouter) registerStudioRoutes(app *fiber.App) {
	clients := app.Group("/clients", middleware.RequireAPISessionAuth)
	clients.Get("/", controllers.HandleClientList)
	clients.Post("/", controllers.HandleClientCreate)
	clients.Put("/:id", controllers.HandleClientUpdate)
	clients.Delete("/:id", controllers.HandleClientDelete)

	events := app.Group("/events", middleware.RequireAPISessionAuth)
	events.Get("/", controllers.HandleEventList)
	events.Post("/", controllers.HandleEventCreate)
	events.Put("/:id", controllers.HandleEventUpdate)
	events.Post("/:id/cancel", controllers.HandleEventCancel)

	albums := app.Group("/albums", middleware.RequireAPISessionAuth)
	albums.Get("/", controllers.HandleAlbumList)
	albums.Post("/", controllers.HandleAlbumCreate)
	albums.Get("/:id", controllers.HandleAlbumGet)
	albums.Post("/:id/publish", controllers.HandleAlbumPublish)
	albums.Post("/:id/unpublish", controllers.HandleAlbumUnpublish)
	albums.Post("/:id/import", controllers.HandleAlbumImport)
	albums.Delete("/:id/photos/:photoId", controllers.HandleAlbumPhotoDelete)

	subscription := app.Group("/subscription", middleware.RequireAPISessionAuth)
	subscription.Get("/", controllers.HandleSubscriptionStatus)
	subscription.Post("/checkout", controllers.HandleSubscriptionCheckout)
	subscription.Post("/cancel", controllers.HandleSubscriptionCancel)

	settings := app.Group("/settings", middleware.RequireAPISessionAuth)
	settings.Post("/payment-account", controllers.HandleMercadoPagoConnect)
	settings.Delete("/payment-account", controllers.HandleMercadoPagoDisconnect)
	settings.Get("/api-keys", controllers.HandleAPIKeyList)
	settings.Post("/api-keys", controllers.HandleAPIKeyCreate)
	settings.Delete("/api-keys/:id", controllers.HandleAPIKeyDeactivate)
}
