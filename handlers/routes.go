package handlers

import (
	"github.com/tech-arch1tect/secretsanta/config"
	jwtmw "github.com/tech-arch1tect/secretsanta/middleware/jwt"
	"github.com/tech-arch1tect/secretsanta/middleware/ratelimit"
	"github.com/tech-arch1tect/secretsanta/server"
	"github.com/tech-arch1tect/secretsanta/services/account"
	"github.com/tech-arch1tect/secretsanta/services/jwt"
)

type Handlers struct {
	Auth             *AuthHandler
	Profile          *ProfileHandler
	Events           *EventHandler
	AdminEvents      *AdminEventHandler
	AdminUsers       *AdminUserHandler
	AdminAssignments *AdminAssignmentHandler
	AdminSettings    *AdminSettingsHandler
}

func NewHandlers(
	auth *AuthHandler,
	profile *ProfileHandler,
	events *EventHandler,
	adminEvents *AdminEventHandler,
	adminUsers *AdminUserHandler,
	adminAssignments *AdminAssignmentHandler,
	adminSettings *AdminSettingsHandler,
) *Handlers {
	return &Handlers{
		Auth:             auth,
		Profile:          profile,
		Events:           events,
		AdminEvents:      adminEvents,
		AdminUsers:       adminUsers,
		AdminAssignments: adminAssignments,
		AdminSettings:    adminSettings,
	}
}

func RegisterRoutes(cfg *config.Config, srv *server.Server, h *Handlers, jwtSvc *jwt.Service, accounts *account.Service) {
	e := srv.Echo()

	limited := ratelimit.Middleware(&cfg.RateLimit, ratelimit.NewMemoryStore())
	e.POST("/auth/register", h.Auth.Register, limited)
	e.POST("/auth/login", h.Auth.Login, limited)
	e.POST("/auth/gwars", h.Auth.GWarsLogin, limited)
	e.GET("/events/current", h.Events.Current)

	authed := e.Group("", jwtmw.RequireJWT(jwtSvc))
	authed.GET("/auth/me", h.Auth.Me)
	authed.PUT("/profile", h.Profile.Update)
	authed.POST("/profile/gwars/challenge", h.Profile.Challenge)
	authed.POST("/profile/gwars/verify", h.Profile.Verify)
	authed.POST("/profile/gwars/regenerate", h.Profile.RegenerateToken)
	authed.GET("/events", h.Events.List)
	authed.POST("/events/:id/register", h.Events.Register)
	authed.POST("/events/:id/confirm", h.Events.Confirm)
	authed.GET("/events/:id/assignment", h.Events.MyAssignment)

	admin := e.Group("/admin", jwtmw.RequireJWT(jwtSvc), jwtmw.RequireAdmin(accounts))
	admin.GET("/events", h.Events.List)
	admin.POST("/events", h.AdminEvents.Create)
	admin.PUT("/events/:id", h.AdminEvents.Update)
	admin.DELETE("/events/:id", h.AdminEvents.Delete)
	admin.GET("/events/:id/participants", h.AdminEvents.Participants)
	admin.GET("/events/:id/assignments", h.AdminAssignments.List)
	admin.POST("/events/:id/assignments/generate", h.AdminAssignments.Generate)
	admin.POST("/events/:id/assignments/approve-all", h.AdminAssignments.ApproveAll)
	admin.POST("/assignments/:id/approve", h.AdminAssignments.Approve)
	admin.PUT("/assignments/:id", h.AdminAssignments.Reassign)
	admin.GET("/users", h.AdminUsers.List)
	admin.PUT("/users/:id", h.AdminUsers.Update)
	admin.POST("/users/:id/block", h.AdminUsers.Block)
	admin.POST("/users/:id/unblock", h.AdminUsers.Unblock)
	admin.POST("/users/:id/promote", h.AdminUsers.Promote)
	admin.DELETE("/users/:id", h.AdminUsers.Purge)
	admin.GET("/settings", h.AdminSettings.List)
	admin.PUT("/settings/:key", h.AdminSettings.Put)
}
