// Package interaction handles user clicks on notifications: mark the item
// read, silence any looping alert, and resolve the in-app destination.
package interaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-notify-agent/internal/domain"
	"github.com/rs/zerolog"
)

// FeedStore is the slice of the feed cache this service needs.
type FeedStore interface {
	Item(audience domain.Audience, id string) (domain.NotificationItem, bool)
	MarkRead(ctx context.Context, audience domain.Audience, id string) error
}

// Alerts is the slice of the orchestrator this service needs.
type Alerts interface {
	Acknowledge(audience domain.Audience)
}

// AudioEngine covers the interaction-related sounds.
type AudioEngine interface {
	PlayClickCue()
	NotifyInteraction()
}

// Resolver maps a notification type to a destination path.
type Resolver interface {
	Resolve(typ, referenceID string, audience domain.Audience) string
}

type Service struct {
	feed     FeedStore
	alerts   Alerts
	audio    AudioEngine
	resolver Resolver
	log      zerolog.Logger
}

func NewService(feed FeedStore, alerts Alerts, audio AudioEngine, resolver Resolver, log zerolog.Logger) *Service {
	return &Service{
		feed:     feed,
		alerts:   alerts,
		audio:    audio,
		resolver: resolver,
		log:      log.With().Str("component", "interaction").Logger(),
	}
}

// Click handles a notification click. The item is marked read only when the
// local copy is still unread, so a double click never double-decrements the
// counter. Any looping alert is forced off regardless of which item was
// clicked. currentPath is where the UI is now: when the destination equals
// it, Refresh tells the UI to produce a visible effect anyway, since
// routers tend to swallow same-path navigations.
func (s *Service) Click(ctx context.Context, audience domain.Audience, id, currentPath string) (domain.ClickResult, error) {
	// Every interaction is a chance to start audio that was blocked earlier.
	s.audio.NotifyInteraction()
	s.alerts.Acknowledge(audience)

	item, ok := s.feed.Item(audience, id)
	if !ok {
		return domain.ClickResult{}, fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
	}

	if !item.IsRead {
		if err := s.feed.MarkRead(ctx, audience, id); err != nil {
			if errors.Is(err, domain.ErrSessionExpired) {
				return domain.ClickResult{}, err
			}
			// Navigation still happens; the badge reconciles next poll.
			s.log.Warn().Err(err).Str("id", id).Msg("mark read failed on click")
		}
	}

	path := s.resolver.Resolve(item.Type, item.ReferenceID, audience)
	return domain.ClickResult{Path: path, Refresh: path == currentPath}, nil
}

// Acknowledge handles a dropdown-open: silence the looping alert and give
// audible feedback.
func (s *Service) Acknowledge(audience domain.Audience) {
	s.audio.NotifyInteraction()
	s.alerts.Acknowledge(audience)
	s.audio.PlayClickCue()
}
