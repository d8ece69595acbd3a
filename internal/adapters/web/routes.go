package web

import (
	"github.com/gofiber/fiber/v2"
)

const healthPath = "/healthz"

// SetupRoutes configures the application routes.
func SetupRoutes(app *fiber.App, handlers *Handlers, rateLimiter *RateLimiter) {
	app.Get(healthPath, handlers.Health)

	// Archive browsing
	app.Get("/", handlers.Home)
	app.Get("/threads/:id", handlers.ViewThread)

	api := app.Group("/api")
	api.Post("/scrape", rateLimiter.Middleware(), handlers.APIScrape)
	api.Get("/threads", handlers.APIListThreads)
	api.Get("/threads/:id", handlers.APIGetThread)
}
