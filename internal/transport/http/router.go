package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-notify-agent/internal/config"
	"github.com/go-notify-agent/internal/domain"
	"github.com/go-notify-agent/internal/transport/http/handler"
	appmiddleware "github.com/go-notify-agent/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the local API router the UI layer talks to.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to the mutating endpoints so
	// UI bugs cannot hammer the storefront backend through the agent.
	mutatingRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	healthH := handler.NewHealthHandler()
	channelH := handler.NewChannelHandler(deps.Feed, deps.Orchestrator, deps.Interactions)
	permissionH := handler.NewPermissionHandler(deps.Gate)
	alertsH := handler.NewAlertsHandler(deps.Journal)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Route("/channels/{audience}", func(r chi.Router) {
				r.Use(appmiddleware.AudienceAccess)

				r.Get("/state", channelH.State)
				r.Get("/notifications", channelH.List)
				r.Get("/unread-count", channelH.UnreadCount)
				r.With(mutatingRL.Limit).Put("/notifications/{id}/read", channelH.MarkRead)
				r.With(mutatingRL.Limit).Put("/mark-all-read", channelH.MarkAllRead)
				r.With(mutatingRL.Limit).Post("/click", channelH.Click)
				r.With(mutatingRL.Limit).Post("/ack", channelH.Ack)
			})

			r.Get("/permission", permissionH.Get)
			r.With(mutatingRL.Limit).Post("/permission/request", permissionH.Request)

			// Operator-only telemetry
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))
				r.Get("/alerts/recent", alertsH.Recent)
			})
		})
	})

	return r
}
