package http

import (
	"github.com/gofiber/fiber/v2"
)

// ServerConfig sizes the fiber application.
type ServerConfig struct {
	AppName   string
	BodyLimit int
}

// NewApp builds the fiber application with views, global middleware and routes.
// Values read from the request outlive the handler (async event payloads), so the app
// runs immutable.
func NewApp(server ServerConfig, middleware MiddlewareConfig, routes RouteConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               server.AppName,
		BodyLimit:             server.BodyLimit,
		Immutable:             true,
		Views:                 NewViews(),
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, middleware)
	RegisterRoutes(app, routes)
	return app
}
