package desktop

import (
	"encoding/json"
	"os"
	"time"

	"github.com/go-notify-agent/internal/domain"
	"github.com/rs/zerolog"
)

// Gate owns the desktop-notification permission tri-state. The state lives
// in a small JSON file so the user (or an admin tool) can reset it
// externally; Status re-reads the file on every call rather than caching,
// so an external reset back to "default" is re-detected.
type Gate struct {
	path     string
	notifier Notifier
	log      zerolog.Logger
}

type permissionState struct {
	Status    domain.PermissionStatus `json:"status"`
	UpdatedAt time.Time               `json:"updated_at"`
}

func NewGate(statePath string, notifier Notifier, log zerolog.Logger) *Gate {
	return &Gate{
		path:     statePath,
		notifier: notifier,
		log:      log.With().Str("component", "permission").Logger(),
	}
}

// Supported reports whether desktop notifications exist on this host.
func (g *Gate) Supported() bool {
	return Supported()
}

// Status returns the current permission. A missing or unreadable state file
// means the user has never been asked: default.
func (g *Gate) Status() domain.PermissionStatus {
	if !g.Supported() {
		return domain.PermissionDenied
	}
	raw, err := os.ReadFile(g.path)
	if err != nil {
		return domain.PermissionDefault
	}
	var st permissionState
	if err := json.Unmarshal(raw, &st); err != nil {
		g.log.Debug().Err(err).Msg("permission state unreadable, treating as default")
		return domain.PermissionDefault
	}
	switch st.Status {
	case domain.PermissionGranted, domain.PermissionDenied:
		return st.Status
	default:
		return domain.PermissionDefault
	}
}

// Request prompts for permission by delivering a verification notification.
// A successful delivery confirms the round trip and records granted; a
// delivery failure records denied. Once the state has left default, Request
// does not prompt again and just reports the recorded status.
func (g *Gate) Request() (domain.PermissionStatus, error) {
	if !g.Supported() {
		return domain.PermissionDenied, domain.ErrUnsupported
	}
	if current := g.Status(); current != domain.PermissionDefault {
		return current, nil
	}

	if err := g.notifier.Notify("Notifications enabled", "You will be alerted about account and payment updates."); err != nil {
		g.log.Warn().Err(err).Msg("verification notification failed, recording denied")
		if perr := g.persist(domain.PermissionDenied); perr != nil {
			return domain.PermissionDenied, perr
		}
		return domain.PermissionDenied, nil
	}
	if err := g.persist(domain.PermissionGranted); err != nil {
		return domain.PermissionDefault, err
	}
	return domain.PermissionGranted, nil
}

// Allowed reports whether a desktop notification may be dispatched now.
func (g *Gate) Allowed() bool {
	return g.Status() == domain.PermissionGranted
}

func (g *Gate) persist(status domain.PermissionStatus) error {
	raw, err := json.Marshal(permissionState{Status: status, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return os.WriteFile(g.path, raw, 0o600)
}
