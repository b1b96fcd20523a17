package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hostbay/livechat-service/internal/api/http/handlers"
	"github.com/hostbay/livechat-service/internal/auth"
	"github.com/hostbay/livechat-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Departments    *handlers.DepartmentsHandler
	Sessions       *handlers.SessionsHandler
	AgentConsole   *handlers.AgentConsoleHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/agents/login", cfg.Auth.Login)
	authGroup.Post("/agents/token/issue", cfg.Auth.IssueToken)
	authGroup.Post("/agents/token/redeem", cfg.Auth.RedeemToken)

	// Visitor widget: unauthenticated by design, visitors self-report
	// their identity.
	chat := app.Group("/chat")
	chat.Get("/departments", cfg.Departments.List)
	chat.Post("/sessions", cfg.Sessions.Start)
	chat.Get("/sessions/:id", cfg.Sessions.Get)
	chat.Post("/sessions/:id/messages", cfg.Sessions.PostMessage)

	agent := app.Group("/agent", cfg.AuthMiddleware.Handle, auth.RequireRole())
	agent.Put("/presence", cfg.AgentConsole.SetPresence)
	agent.Get("/departments/:id/agents", cfg.AgentConsole.Roster)
	agent.Get("/sessions", cfg.AgentConsole.List)
	agent.Get("/sessions/:id", cfg.AgentConsole.Get)
	agent.Post("/sessions/:id/claim", cfg.AgentConsole.Claim)
	agent.Post("/sessions/:id/messages", cfg.AgentConsole.PostMessage)
	agent.Post("/sessions/:id/close", cfg.AgentConsole.Close)
	agent.Post("/sessions/:id/assign/auto",
		auth.RequireRole(domain.AgentRoleSupervisor, domain.AgentRoleAdmin),
		cfg.AgentConsole.AutoAssign)
}
