// Package feed keeps the per-audience client-side notification cache: the
// truncated item page plus the backend-authoritative unread counter. The
// backend remains the source of truth; everything here is UI smoothing over
// a polling transport.
package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-notify-agent/internal/domain"
)

// BackendClient is the slice of the storefront backend this service needs.
type BackendClient interface {
	ListRecent(ctx context.Context, audience domain.Audience, limit int) ([]domain.NotificationItem, error)
	UnreadCount(ctx context.Context, audience domain.Audience) (int, error)
	MarkRead(ctx context.Context, audience domain.Audience, id string) error
	MarkAllRead(ctx context.Context, audience domain.Audience) error
}

type Service interface {
	// RefreshCount fetches the authoritative unread count. On failure the
	// cached count is left untouched.
	RefreshCount(ctx context.Context, audience domain.Audience) (int, error)
	// RefreshItems fetches the most recent page. On failure the cached page
	// is left untouched.
	RefreshItems(ctx context.Context, audience domain.Audience, limit int) error
	// MarkRead marks one item read. Marking an already-read item is a no-op
	// on the counter.
	MarkRead(ctx context.Context, audience domain.Audience, id string) error
	// MarkAllRead clears the channel. Local state is cleared optimistically
	// before the round trip so the badge never flashes stale.
	MarkAllRead(ctx context.Context, audience domain.Audience) error
	Item(audience domain.Audience, id string) (domain.NotificationItem, bool)
	Snapshot(audience domain.Audience) ([]domain.NotificationItem, int)
}

type channelCache struct {
	items  []domain.NotificationItem
	unread int

	// acked holds ids marked read locally that the cached page cannot vouch
	// for (off-page items, or items a later page dropped). Without it, a
	// retried mark-read on an off-page id would decrement the counter twice:
	// the backend answers an already-read item with the same 200.
	acked map[string]bool
}

type service struct {
	backend BackendClient

	mu       sync.RWMutex
	channels map[domain.Audience]*channelCache
}

func NewService(backend BackendClient) Service {
	return &service{
		backend: backend,
		channels: map[domain.Audience]*channelCache{
			domain.AudienceAdmin:  {acked: make(map[string]bool)},
			domain.AudienceClient: {acked: make(map[string]bool)},
		},
	}
}

func (s *service) RefreshCount(ctx context.Context, audience domain.Audience) (int, error) {
	count, err := s.backend.UnreadCount(ctx, audience)
	if err != nil {
		return 0, fmt.Errorf("refresh count: %w", err)
	}
	s.mu.Lock()
	s.channels[audience].unread = count
	s.mu.Unlock()
	return count, nil
}

func (s *service) RefreshItems(ctx context.Context, audience domain.Audience, limit int) error {
	items, err := s.backend.ListRecent(ctx, audience, limit)
	if err != nil {
		return fmt.Errorf("refresh items: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ch := s.channels[audience]

	// An item marked read locally never reverts, even if a stale backend
	// page still carries it as unread.
	readLocally := make(map[string]bool, len(ch.items))
	for _, it := range ch.items {
		if it.IsRead {
			readLocally[it.ID] = true
		}
	}
	for i := range items {
		if readLocally[items[i].ID] || ch.acked[items[i].ID] {
			items[i].IsRead = true
		}
		// Once the page carries the item, its IsRead flag takes over from
		// the acked set.
		delete(ch.acked, items[i].ID)
	}
	ch.items = items
	return nil
}

func (s *service) MarkRead(ctx context.Context, audience domain.Audience, id string) error {
	// The backend answers an already-read item with the same 200, so the
	// no-op detection has to happen here: via the cached page when the item
	// is on it, via the acked set when it is not.
	s.mu.RLock()
	if it, ok := s.find(audience, id); ok && it.IsRead {
		s.mu.RUnlock()
		return nil
	}
	if s.channels[audience].acked[id] {
		s.mu.RUnlock()
		return nil
	}
	s.mu.RUnlock()

	if err := s.backend.MarkRead(ctx, audience, id); err != nil {
		return fmt.Errorf("mark read %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ch := s.channels[audience]
	for i := range ch.items {
		if ch.items[i].ID == id {
			ch.items[i].IsRead = true
			break
		}
	}
	// Guard in the acked set as well: the item may drop off the page before
	// a retry arrives. RefreshItems prunes the set once a page vouches for
	// the id again.
	ch.acked[id] = true
	if ch.unread > 0 {
		ch.unread--
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, audience domain.Audience) error {
	s.mu.Lock()
	ch := s.channels[audience]
	for i := range ch.items {
		ch.items[i].IsRead = true
	}
	ch.unread = 0
	ch.acked = make(map[string]bool)
	s.mu.Unlock()

	if err := s.backend.MarkAllRead(ctx, audience); err != nil {
		// Local state stays cleared; the next poll reconciles against the
		// authoritative count.
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

func (s *service) Item(audience domain.Audience, id string) (domain.NotificationItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(audience, id)
}

func (s *service) Snapshot(audience domain.Audience) ([]domain.NotificationItem, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch := s.channels[audience]
	items := make([]domain.NotificationItem, len(ch.items))
	copy(items, ch.items)
	return items, ch.unread
}

// find looks an item up in the cached page. mu must be held.
func (s *service) find(audience domain.Audience, id string) (domain.NotificationItem, bool) {
	for _, it := range s.channels[audience].items {
		if it.ID == id {
			return it, true
		}
	}
	return domain.NotificationItem{}, false
}
