package handler

import (
	"net/http"

	"github.com/go-notify-agent/internal/domain"
)

// AlertJournal exposes recently fired alerts.
type AlertJournal interface {
	RecentAlerts() []domain.AlertEvent
}

// AlertsHandler serves the alert telemetry journal.
type AlertsHandler struct {
	journal AlertJournal
}

func NewAlertsHandler(journal AlertJournal) *AlertsHandler {
	return &AlertsHandler{journal: journal}
}

func (h *AlertsHandler) Recent(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.journal.RecentAlerts())
}
