package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/csv-manager/internal/api/http/handlers"
	"github.com/spec-kit/csv-manager/internal/auth"
	"github.com/spec-kit/csv-manager/internal/ws"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	CSV            *handlers.CSVHandler
	AuthMiddleware *auth.AuthMiddleware
	Hub            *ws.Hub
	Logger         *zap.Logger
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/signup", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Auth.Signup)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Auth.Me)

	users := api.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	users.Get("/", cfg.Users.List)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)

	csv := api.Group("/csv", cfg.AuthMiddleware.Handle)
	csv.Post("/upload", auth.RequireAdmin(), cfg.CSV.Upload)
	csv.Get("/list", auth.RequireAuthenticated(), cfg.CSV.List)
	csv.Get("/:id/view", auth.RequireAuthenticated(), cfg.CSV.View)
	csv.Get("/:id/download", auth.RequireAuthenticated(), cfg.CSV.Download)
	csv.Delete("/:id", auth.RequireAdmin(), cfg.CSV.Delete)

	app.Use("/ws", ws.UpgradeRequired())
	app.Get("/ws/csv-updates", ws.Handler(cfg.Hub, cfg.Logger))
}
