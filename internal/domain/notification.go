package domain

import "time"

// Audience identifies one of the two independent notification feeds.
type Audience string

const (
	AudienceAdmin  Audience = "admin"
	AudienceClient Audience = "client"
)

// ParseAudience validates an audience string from an untrusted source
// (URL parameter, config). Unknown values return ErrBadRequest.
func ParseAudience(s string) (Audience, error) {
	switch Audience(s) {
	case AudienceAdmin:
		return AudienceAdmin, nil
	case AudienceClient:
		return AudienceClient, nil
	default:
		return "", ErrBadRequest
	}
}

// Notification type vocabulary. The set is open-ended: the backend may emit
// types this agent has never seen, and those must still resolve somewhere.
// The constants below are the types the storefront emits today.
const (
	TypeApproval          = "approval"
	TypeAccountRequest    = "account_request"
	TypeNewOrder          = "new_order"
	TypePaymentProof      = "payment_proof"
	TypePaymentVerified   = "payment_verified"
	TypeTopUp             = "top_up"
	TypeTopUpApproved     = "topup_approved"
	TypeWithdrawRequest   = "withdraw_request"
	TypeWithdrawApproved  = "withdraw_approved"
	TypeWithdrawRejected  = "withdraw_rejected"
	TypeTransferRequest   = "transfer_request"
	TypeTransferCompleted = "transfer_completed"
)

// NotificationItem is one entry in an audience's feed, as served by the
// storefront backend. The backend owns ordering; CreatedAt is display-only.
type NotificationItem struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	ReferenceID string    `json:"reference_id,omitempty"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created"`
}
