package handler

import (
	"net/http"

	"github.com/go-notify-agent/internal/domain"
)

// PermissionGate is the slice of the desktop gate the handlers need.
type PermissionGate interface {
	Status() domain.PermissionStatus
	Request() (domain.PermissionStatus, error)
	Supported() bool
}

// PermissionHandler exposes the desktop-notification permission tri-state.
type PermissionHandler struct {
	gate PermissionGate
}

func NewPermissionHandler(gate PermissionGate) *PermissionHandler {
	return &PermissionHandler{gate: gate}
}

func (h *PermissionHandler) Get(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, PermissionEnvelope{
		Status:    h.gate.Status(),
		Supported: h.gate.Supported(),
	})
}

// Request prompts for permission. Denied is a valid outcome, not an error.
func (h *PermissionHandler) Request(w http.ResponseWriter, _ *http.Request) {
	status, err := h.gate.Request()
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PermissionEnvelope{
		Status:    status,
		Supported: h.gate.Supported(),
	})
}
