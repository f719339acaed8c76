package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eservicedesk/internal/api/http/handlers"
	"github.com/spec-kit/eservicedesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Logbook        *handlers.LogbookHandler
	Monitoring     *handlers.MonitoringHandler
	Technicians    *handlers.TechnicianHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Users.Login)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	authProtected.Post("/password/change", cfg.Users.ChangePassword)
	authProtected.Post("/webmin", cfg.Users.UpsertWebmin)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	logbook := api.Group("/logbook")
	logbook.Get("/", cfg.Logbook.List)
	logbook.Post("/", cfg.Logbook.Create)
	logbook.Post("/bulk-delete", cfg.Logbook.BulkDelete)
	logbook.Get("/:id", cfg.Logbook.Get)
	logbook.Put("/:id", cfg.Logbook.Update)
	logbook.Delete("/:id", cfg.Logbook.Delete)

	monitoring := api.Group("/monitoring")
	monitoring.Post("/create-order", cfg.Monitoring.CreateOrder)
	monitoring.Post("/bulk-order", cfg.Monitoring.BulkOrder)
	monitoring.Get("/verify", cfg.Monitoring.ListBucket)
	monitoring.Post("/verify", cfg.Monitoring.Verify)
	monitoring.Post("/cancel-order", cfg.Monitoring.CancelOrder)
	monitoring.Post("/edit-order", cfg.Monitoring.EditOrder)
	monitoring.Post("/assign-order", cfg.Monitoring.AssignOrder)
	monitoring.Get("/assign-list", cfg.Monitoring.AssignList)
	monitoring.Get("/summary", cfg.Monitoring.Summary)
	monitoring.Get("/order/:id", cfg.Monitoring.OrderDetail)

	technicians := api.Group("/technician-status")
	technicians.Get("/", cfg.Technicians.List)
	technicians.Post("/", cfg.Technicians.Upsert)
	technicians.Patch("/:id/duty", cfg.Technicians.SetDuty)
}
