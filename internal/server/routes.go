package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campusboard/internal/gate"
	"campusboard/internal/handlers/api"
	"campusboard/internal/middleware"
	"campusboard/internal/models"
)

// Handlers bundles everything RegisterRoutes mounts. Login may be nil when
// OIDC login helpers are not configured.
type Handlers struct {
	Auth        *middleware.AuthMiddleware
	Login       *api.AuthHandler
	News        *api.ContentHandler[*models.News]
	Sharespeare *api.ContentHandler[*models.SharespearePost]
	Comments    *api.ContentHandler[*models.Comment]
	Moderation  *api.ModerationHandler
	Topics      *api.TopicHandler
	Events      *api.EventHandler
	Accounts    *api.AccountHandler
	Health      *api.HealthHandler
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(h Handlers) {
	s.App.Get("/healthz", h.Health.Healthz)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	if h.Login != nil {
		s.App.Get("/auth/login", h.Login.Login)
		s.App.Get("/auth/callback", h.Login.Callback)
	}

	authed := s.App.Group("", h.Auth.RequireAuth)

	authed.Get("/me", h.Accounts.Me)

	h.News.Register(authed.Group("/content/news"))
	h.Sharespeare.Register(authed.Group("/content/sharespeare"))

	authed.Get("/moderation/queue", h.Moderation.Queue)

	authed.Get("/topics", h.Topics.List)
	authed.Post("/topics", h.Topics.Create)
	authed.Get("/topics/:id", h.Topics.Get)
	authed.Post("/topics/:id/lock", h.Topics.SetStatus(models.TopicLocked))
	authed.Post("/topics/:id/unlock", h.Topics.SetStatus(models.TopicOpen))
	authed.Get("/topics/:id/comments", h.Topics.ListComments)
	authed.Post("/topics/:id/comments", h.Topics.CreateComment)

	authed.Get("/comments/:id", h.Comments.Get)
	authed.Get("/comments/:id/history", h.Comments.History)
	authed.Post("/comments/:id/approve", h.Comments.Transition(gate.Approve))
	authed.Post("/comments/:id/reject", h.Comments.Transition(gate.Reject))
	authed.Delete("/comments/:id", h.Comments.Delete)

	authed.Get("/events", h.Events.List)
	authed.Post("/events", h.Events.Create)
	authed.Put("/events/:id", h.Events.Update)
	authed.Delete("/events/:id", h.Events.Delete)

	authed.Get("/admin/accounts", h.Accounts.List)
	authed.Post("/admin/accounts/:id/role", h.Accounts.SetRole)
}
