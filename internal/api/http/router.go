package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-desk/request-service/internal/api/http/handlers"
	"github.com/campus-desk/request-service/internal/auth"
	"github.com/campus-desk/request-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Requests       *handlers.RequestsHandler
	Officer        *handlers.OfficerHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	me := app.Group("/me", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	me.Get("/", cfg.Auth.Me)
	me.Patch("/", cfg.Auth.UpdateProfile)

	// Taxonomies are readable by any authenticated caller.
	catalog := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	catalog.Get("/units", cfg.Requests.ListUnits)
	catalog.Get("/categories", cfg.Requests.ListCategories)

	requests := app.Group("/requests", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	requests.Post("/", cfg.Requests.CreateRequest)
	requests.Get("/", cfg.Requests.ListRequests)
	requests.Get("/:id", cfg.Requests.GetRequest)
	requests.Get("/:id/timeline", cfg.Requests.GetTimeline)
	requests.Post("/:id/respond", cfg.Requests.Respond)
	requests.Post("/:id/cancel", cfg.Requests.Cancel)
	requests.Post("/:id/attachments", cfg.Requests.Attach)

	app.Get("/dashboard", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Requests.Dashboard)

	officer := app.Group("/officer", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleOfficer, domain.RoleAdmin))
	officer.Get("/inbox", cfg.Officer.Inbox)
	officer.Get("/assigned", cfg.Officer.Assigned)
	officer.Post("/requests/:id/claim", cfg.Officer.Claim)
	officer.Post("/requests/:id/transfer", cfg.Officer.Transfer)
	officer.Post("/requests/:id/respond", cfg.Officer.Respond)
	officer.Post("/requests/:id/resolve", cfg.Officer.Resolve)
	officer.Get("/units/:id/officers", cfg.Officer.Peers)
	officer.Get("/dashboard", cfg.Officer.Dashboard)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Patch("/users/:id/role", cfg.Admin.ChangeRole)
	admin.Put("/users/:id/units", cfg.Admin.AssignUnits)
	admin.Get("/requests", cfg.Admin.ListRequests)
	admin.Get("/requests/:id", cfg.Admin.GetRequest)
	admin.Get("/units", cfg.Admin.ListAllUnits)
	admin.Post("/units", cfg.Admin.CreateUnit)
	admin.Patch("/units/:id", cfg.Admin.UpdateUnit)
	admin.Get("/categories", cfg.Admin.ListAllCategories)
	admin.Post("/categories", cfg.Admin.CreateCategory)
	admin.Patch("/categories/:id", cfg.Admin.UpdateCategory)
	admin.Get("/dashboard", cfg.Admin.Dashboard)
}
