package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/moona-liza/natours/internal/api/http/handlers"
	"github.com/moona-liza/natours/internal/auth"
	"github.com/moona-liza/natours/internal/domain"
	"github.com/moona-liza/natours/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.Middleware
	RateLimiter    *ratelimit.Limiter
}

// RegisterRoutes wires HTTP routes. Protect must run before RequireRoles on
// every restricted group; RequireRoles rejects any request Protect has not
// identified.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	if cfg.RateLimiter != nil {
		api = api.Group("", cfg.RateLimiter.Handle)
	}

	users := api.Group("/v1/users")
	users.Post("/signup", cfg.Auth.Signup)
	users.Post("/login", cfg.Auth.Login)
	users.Get("/logout", cfg.AuthMiddleware.LoadUser, cfg.Auth.Logout)
	users.Post("/forgotPassword", cfg.Auth.ForgotPassword)
	users.Patch("/resetPassword/:token", cfg.Auth.ResetPassword)

	users.Patch("/updateMyPassword", cfg.AuthMiddleware.Protect, cfg.Auth.UpdateMyPassword)

	admin := api.Group("/v1/admin", cfg.AuthMiddleware.Protect, auth.RequireRoles(domain.RoleAdmin))
	admin.Get("/metrics", cfg.Admin.Metrics)
}
