package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-notify-agent/internal/domain"
)

// FeedService is the slice of the feed cache the handlers need.
type FeedService interface {
	MarkRead(ctx context.Context, audience domain.Audience, id string) error
	MarkAllRead(ctx context.Context, audience domain.Audience) error
	Snapshot(audience domain.Audience) ([]domain.NotificationItem, int)
}

// Orchestrator exposes channel snapshots to the UI.
type Orchestrator interface {
	Snapshot(audience domain.Audience) domain.ChannelSnapshot
}

// InteractionService handles clicks and dropdown-open acknowledgements.
type InteractionService interface {
	Click(ctx context.Context, audience domain.Audience, id, currentPath string) (domain.ClickResult, error)
	Acknowledge(audience domain.Audience)
}

// ChannelHandler serves the per-audience channel endpoints.
type ChannelHandler struct {
	feed FeedService
	orch Orchestrator
	itx  InteractionService
}

func NewChannelHandler(feed FeedService, orch Orchestrator, itx InteractionService) *ChannelHandler {
	return &ChannelHandler{feed: feed, orch: orch, itx: itx}
}

// audience is pre-validated by the AudienceAccess middleware.
func audienceParam(r *http.Request) domain.Audience {
	return domain.Audience(chi.URLParam(r, "audience"))
}

// State returns the full channel snapshot: items, counter, alert flags,
// permission status.
func (h *ChannelHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.orch.Snapshot(audienceParam(r)))
}

// List returns the cached feed page plus the authoritative unread counter.
func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	items, unread := h.feed.Snapshot(audienceParam(r))
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 && limit < len(items) {
			items = items[:limit]
		}
	}
	writeJSON(w, http.StatusOK, NotificationsEnvelope{Items: items, UnreadCount: unread})
}

func (h *ChannelHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	_, unread := h.feed.Snapshot(audienceParam(r))
	writeJSON(w, http.StatusOK, CountEnvelope{Count: unread})
}

func (h *ChannelHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	err := h.feed.MarkRead(r.Context(), audienceParam(r), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "marked read"})
}

func (h *ChannelHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.feed.MarkAllRead(r.Context(), audienceParam(r)); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "all marked read"})
}

// ClickRequest is the body of the click endpoint. CurrentPath is where the
// UI router is right now; it drives same-path refresh detection.
type ClickRequest struct {
	ID          string `json:"id"`
	CurrentPath string `json:"current_path"`
}

func (h *ChannelHandler) Click(w http.ResponseWriter, r *http.Request) {
	var req ClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "invalid click payload")
		return
	}
	result, err := h.itx.Click(r.Context(), audienceParam(r), req.ID, req.CurrentPath)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Ack handles dropdown-open: silences the looping alert, plays the click cue.
func (h *ChannelHandler) Ack(w http.ResponseWriter, r *http.Request) {
	h.itx.Acknowledge(audienceParam(r))
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "acknowledged"})
}
