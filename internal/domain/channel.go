package domain

import "time"

// PermissionStatus is the desktop-notification permission tri-state. The
// transition default -> (granted | denied) is driven by the permission gate;
// an external reset back to default (user clears the state file) is picked
// up by live re-reads, never cached away.
type PermissionStatus string

const (
	PermissionDefault PermissionStatus = "default"
	PermissionGranted PermissionStatus = "granted"
	PermissionDenied  PermissionStatus = "denied"
)

// ChannelSnapshot is the UI-facing view of one audience channel at a point
// in time. UnreadCount is the backend-authoritative number, not the length
// of Items (Items is a truncated page).
type ChannelSnapshot struct {
	Audience       Audience           `json:"audience"`
	Items          []NotificationItem `json:"items"`
	UnreadCount    int                `json:"unread_count"`
	BellRinging    bool               `json:"bell_ringing"`
	AlertLooping   bool               `json:"alert_looping"`
	SessionExpired bool               `json:"session_expired"`
	Permission     PermissionStatus   `json:"permission"`
	LastPolledAt   time.Time          `json:"last_polled_at,omitempty"`
}

// AlertEvent records one fired alert for the telemetry journal.
type AlertEvent struct {
	ID            string    `json:"id"`
	Audience      Audience  `json:"audience"`
	PreviousCount int       `json:"previous_count"`
	NewCount      int       `json:"new_count"`
	Desktop       bool      `json:"desktop"` // desktop notification dispatched
	FiredAt       time.Time `json:"fired_at"`
}

// ClickResult is the outcome of resolving a notification click. Refresh is
// true when the destination equals the path the UI is already on, in which
// case the UI must still produce a visible effect (scroll-to-top plus a
// lightweight confirmation) instead of a silent no-op.
type ClickResult struct {
	Path    string `json:"path"`
	Refresh bool   `json:"refresh"`
}
