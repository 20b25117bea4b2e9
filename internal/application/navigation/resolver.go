// Package navigation maps notification types to in-app destinations. The
// mapping is pure and total: any string, including empty or unknown, yields
// a role-appropriate path and never an error.
package navigation

import (
	"net/url"

	"github.com/go-notify-agent/internal/domain"
	"github.com/rs/zerolog"
)

// Audience dashboard roots, also the fallback for unrecognized types.
const (
	adminRoot  = "/admin"
	clientRoot = "/dashboard"
)

// destination holds the per-audience paths for one notification type.
type destination struct {
	admin  string
	client string
}

// routes keys the current type vocabulary. Dozens of heterogeneous backend
// events funnel into a handful of screens, so many types share a
// destination.
var routes = map[string]destination{
	domain.TypeApproval:          {admin: "/admin/requests", client: "/dashboard/accounts"},
	domain.TypeAccountRequest:    {admin: "/admin/requests", client: "/dashboard/accounts"},
	domain.TypeNewOrder:          {admin: "/admin/orders", client: "/dashboard/orders"},
	domain.TypePaymentProof:      {admin: "/admin/payments", client: "/dashboard/orders"},
	domain.TypePaymentVerified:   {admin: "/admin/payments", client: "/dashboard/orders"},
	domain.TypeTopUp:             {admin: "/admin/payments", client: "/dashboard/wallet"},
	domain.TypeTopUpApproved:     {admin: "/admin/payments", client: "/dashboard/wallet"},
	domain.TypeWithdrawRequest:   {admin: "/admin/withdrawals", client: "/dashboard/wallet"},
	domain.TypeWithdrawApproved:  {admin: "/admin/withdrawals", client: "/dashboard/wallet"},
	domain.TypeWithdrawRejected:  {admin: "/admin/withdrawals", client: "/dashboard/wallet"},
	domain.TypeTransferRequest:   {admin: "/admin/transfers", client: "/dashboard/wallet"},
	domain.TypeTransferCompleted: {admin: "/admin/transfers", client: "/dashboard/wallet"},
}

// aliases maps legacy and renamed event types still emitted by older
// backend code paths onto the current vocabulary.
var aliases = map[string]string{
	"acc_approval":        domain.TypeApproval,
	"account_approved":    domain.TypeApproval,
	"order_created":       domain.TypeNewOrder,
	"proof_upload":        domain.TypePaymentProof,
	"payment_received":    domain.TypePaymentVerified,
	"deposit":             domain.TypeTopUp,
	"withdrawal_request":  domain.TypeWithdrawRequest,
	"withdrawal_approved": domain.TypeWithdrawApproved,
	"withdrawal_rejected": domain.TypeWithdrawRejected,
	"balance_transfer":    domain.TypeTransferRequest,
}

// Resolver resolves notification types to destination paths.
type Resolver struct {
	log zerolog.Logger
}

func NewResolver(log zerolog.Logger) *Resolver {
	return &Resolver{log: log.With().Str("component", "navigation").Logger()}
}

// Resolve returns the destination for a type and audience. Unknown types
// fall back to the audience's dashboard root; the fallback is logged, not
// raised, so new backend event types show up in telemetry instead of
// crashing the click path.
func (r *Resolver) Resolve(typ, referenceID string, audience domain.Audience) string {
	key := typ
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}

	dest, ok := routes[key]
	if !ok {
		r.log.Warn().Str("type", typ).Str("audience", string(audience)).Msg("unknown notification type, using fallback route")
		return fallback(audience)
	}

	path := dest.client
	if audience == domain.AudienceAdmin {
		path = dest.admin
	}
	if referenceID != "" {
		path += "?ref=" + url.QueryEscape(referenceID)
	}
	return path
}

func fallback(audience domain.Audience) string {
	if audience == domain.AudienceAdmin {
		return adminRoot
	}
	return clientRoot
}
