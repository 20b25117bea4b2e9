package http

import (
	jwtinfra "github.com/go-notify-agent/internal/infrastructure/jwt"
	"github.com/go-notify-agent/internal/transport/http/handler"
)

// Deps holds the service dependencies for the local API router. The handler
// package declares the minimal interfaces; the router only wires concrete
// services to them.
type Deps struct {
	Feed         handler.FeedService
	Orchestrator handler.Orchestrator
	Interactions handler.InteractionService
	Gate         handler.PermissionGate
	Journal      handler.AlertJournal
	JWTProvider  *jwtinfra.Provider
}
