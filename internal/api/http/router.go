package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crisis-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Crises   *handlers.CrisesHandler
	Metrics  *handlers.MetricsHandler
	BasePath string
}

// RegisterRoutes wires HTTP routes. Fixed crisis paths are registered before
// the :id routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Snapshot)
	}

	crises := app.Group(cfg.BasePath + "/crises")
	crises.Get("/search", cfg.Crises.Search)
	crises.Get("/filter", cfg.Crises.Filter)
	crises.Get("/statistics", cfg.Crises.Statistics)
	crises.Get("/export", cfg.Crises.Export)

	crises.Get("/", cfg.Crises.List)
	crises.Post("/", cfg.Crises.Create)
	crises.Get("/:id", cfg.Crises.Get)
	crises.Put("/:id", cfg.Crises.Update)
	crises.Delete("/:id", cfg.Crises.Delete)
}
