package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/almacen-api/internal/config"
	"github.com/noah-isme/almacen-api/internal/handler"
	"github.com/noah-isme/almacen-api/internal/middleware"
	"github.com/noah-isme/almacen-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CatalogHandler      *handler.CatalogHandler
	RegisterHandler     *handler.RegisterHandler
	SaleHandler         *handler.SaleHandler
	CreditHandler       *handler.CreditHandler
	ActivityHandler     *handler.ActivityHandler
	ActivityFeedHandler *handler.ActivityFeedHandler
	JWTMiddleware       fiber.Handler
	HealthProbes        map[string]handler.HealthProbe
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	cashier := middleware.WithAuth(func(c *fiber.Ctx) error { return c.Next() }, middleware.AuthOptions{Role: middleware.AuthRoleCashier})
	admin := middleware.RequireRole(middleware.AuthRoleAdmin)

	if deps.CatalogHandler != nil {
		deps.CatalogHandler.Register(api.Group("/catalog", jwtMiddleware, cashier), admin)
	}
	if deps.RegisterHandler != nil {
		deps.RegisterHandler.Register(api.Group("/registers", jwtMiddleware, cashier))
	}
	if deps.SaleHandler != nil {
		deps.SaleHandler.Register(api.Group("/pos", jwtMiddleware, cashier))
	}
	if deps.CreditHandler != nil {
		deps.CreditHandler.Register(api.Group("/credits", jwtMiddleware, cashier))
	}

	activities := api.Group("/activities", jwtMiddleware)
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(activities, admin, middleware.RateLimit("activities", 30, time.Minute))
	}
	if deps.ActivityFeedHandler != nil {
		deps.ActivityFeedHandler.Register(activities)
	}
}
