package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-service/internal/api/http/handlers"
	"github.com/spec-kit/sla-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Auth            *handlers.AuthHandler
	Tickets         *handlers.TicketsHandler
	Assignments     *handlers.AssignmentsHandler
	SLA             *handlers.SLAHandler
	AgentMiddleware *auth.AgentMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/agents/register", cfg.Auth.Register)

	tickets := app.Group("/tickets", cfg.AgentMiddleware.Handle)
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/first-response", cfg.Tickets.RecordFirstResponse)
	tickets.Post("/:id/assign", cfg.Assignments.Assign)
	tickets.Post("/:id/transfer", cfg.Assignments.Transfer)
	tickets.Post("/:id/close", cfg.Assignments.Close)
	tickets.Get("/:id/history", cfg.Assignments.History)
	tickets.Get("/:id/sla", cfg.SLA.TicketSLA)

	metrics := app.Group("/metrics", cfg.AgentMiddleware.Handle)
	metrics.Get("/sla", cfg.SLA.Metrics)

	admin := app.Group("/admin", cfg.AgentMiddleware.Handle)
	admin.Post("/sla-config/invalidate", cfg.SLA.InvalidateConfig)
}
