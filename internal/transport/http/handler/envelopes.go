package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-notify-agent/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NotificationsEnvelope wraps a feed page with its authoritative counter.
// The counter is global; the items are a truncated page, so the two may
// legitimately disagree.
type NotificationsEnvelope struct {
	Items       []domain.NotificationItem `json:"items"`
	UnreadCount int                       `json:"unread_count"`
}

// CountEnvelope wraps the unread-count endpoint response.
type CountEnvelope struct {
	Count int `json:"count"`
}

// PermissionEnvelope wraps the permission endpoints' responses.
type PermissionEnvelope struct {
	Status    domain.PermissionStatus `json:"status"`
	Supported bool                    `json:"supported"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinel errors onto HTTP statuses.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrSessionExpired):
		writeError(w, http.StatusUnauthorized, "session expired")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad request")
	case errors.Is(err, domain.ErrUnsupported):
		writeError(w, http.StatusNotImplemented, "unsupported on this host")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
