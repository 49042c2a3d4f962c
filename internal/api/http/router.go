package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/printops/jobtrack/internal/api/http/handlers"
	"github.com/printops/jobtrack/internal/auth"
	"github.com/printops/jobtrack/internal/realtime"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Board          *handlers.BoardHandler
	Jobs           *handlers.JobsHandler
	Admin          *handlers.AdminHandler
	Tracker        *handlers.TrackerHandler
	Hub            *realtime.Hub
	AuthMiddleware *auth.AuthMiddleware
	Logger         *zap.Logger
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/owner/login", cfg.Auth.OwnerLogin)
	authGroup.Post("/sso/login", cfg.Auth.SSOLogin)

	// Session resolution answers for anonymous callers too.
	app.Get("/me", cfg.Auth.Me)

	// Public client tracker, no authentication.
	app.Get("/track/:id", cfg.Tracker.Track)

	staff := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	staff.Get("/board", cfg.Board.Board)
	staff.Post("/jobs", cfg.Jobs.CreateJob)
	staff.Get("/jobs/:id", cfg.Jobs.GetJob)
	staff.Post("/jobs/:id/updates", cfg.Jobs.UpdateJob)
	staff.Post("/jobs/:id/approval-request", cfg.Jobs.RequestApproval)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireOwner())
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Patch("/users/:id/department", cfg.Admin.ReassignDepartment)
	admin.Post("/diagnose", cfg.Admin.Diagnose)

	registerWebsocketRoutes(app, cfg)
}

// registerWebsocketRoutes wires the realtime push endpoints: the staff
// socket (board or one job, token carried in the query string) and the
// public per-job tracker socket.
func registerWebsocketRoutes(app *fiber.App, cfg RouteConfig) {
	upgrade := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	app.Use("/ws", upgrade, cfg.AuthMiddleware.Handle, auth.RequireStaff())
	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		topic := realtime.TopicBoard
		if jobID := conn.Query("job_id"); jobID != "" {
			topic = realtime.JobTopic(jobID)
		}
		realtime.Serve(cfg.Hub, conn, topic, cfg.Logger)
	}))

	app.Use("/ws-track/:id", upgrade)
	app.Get("/ws-track/:id", websocket.New(func(conn *websocket.Conn) {
		realtime.Serve(cfg.Hub, conn, realtime.JobTopic(conn.Params("id")), cfg.Logger)
	}))
}
