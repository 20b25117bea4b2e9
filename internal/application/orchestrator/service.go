// Package orchestrator runs the per-audience polling loops and decides when
// to alert. With no push channel, "new notification" can only be inferred
// from an unread-count increase: the list endpoint returns a truncated page
// that can shift silently as new items bump old ones off, so item diffing
// is useless and the counter is the only reliable signal.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-notify-agent/internal/domain"
	"github.com/go-notify-agent/internal/pkg/id"
	"github.com/rs/zerolog"
)

// bellAnimation is how long the UI bell icon shakes after an alert.
const bellAnimation = time.Second

// journalCap bounds the in-memory alert journal.
const journalCap = 50

// Store is the slice of the feed cache the orchestrator needs.
type Store interface {
	RefreshCount(ctx context.Context, audience domain.Audience) (int, error)
	RefreshItems(ctx context.Context, audience domain.Audience, limit int) error
	Snapshot(audience domain.Audience) ([]domain.NotificationItem, int)
}

// AudioEngine raises and silences the audible cues.
type AudioEngine interface {
	PlayOneShot()
	PlayLoopingAlert()
	StopLoopingAlert()
	IsLooping() bool
}

// PermissionGate decides whether a desktop notification may be dispatched.
type PermissionGate interface {
	Allowed() bool
	Status() domain.PermissionStatus
}

// DesktopNotifier delivers OS-level notifications.
type DesktopNotifier interface {
	Notify(title, message string) error
}

// Escalator forwards an alert out-of-band when it stays unacknowledged.
type Escalator interface {
	Escalate(evt domain.AlertEvent)
}

// Deps holds the orchestrator's collaborators. Escalator may be nil.
type Deps struct {
	Store           Store
	Audio           AudioEngine
	Gate            PermissionGate
	Desktop         DesktopNotifier
	Escalator       Escalator
	EscalationDelay time.Duration
	FetchLimit      int
	Logger          zerolog.Logger
}

// channel is the runtime state of one mounted audience feed. Channels share
// no mutable state with each other; stopping one never affects the other.
type channel struct {
	audience domain.Audience
	cancel   context.CancelFunc

	prev           int
	primed         bool
	bellUntil      time.Time
	sessionExpired bool
	lastPolled     time.Time

	pollSeq    uint64
	appliedSeq uint64

	escalation *time.Timer
}

type Service struct {
	store           Store
	audio           AudioEngine
	gate            PermissionGate
	desktop         DesktopNotifier
	escalator       Escalator
	escalationDelay time.Duration
	fetchLimit      int
	log             zerolog.Logger

	mu       sync.Mutex
	channels map[domain.Audience]*channel
	journal  []domain.AlertEvent
	wg       sync.WaitGroup
}

func NewService(d Deps) *Service {
	return &Service{
		store:           d.Store,
		audio:           d.Audio,
		gate:            d.Gate,
		desktop:         d.Desktop,
		escalator:       d.Escalator,
		escalationDelay: d.EscalationDelay,
		fetchLimit:      d.FetchLimit,
		log:             d.Logger.With().Str("component", "orchestrator").Logger(),
		channels:        make(map[domain.Audience]*channel),
	}
}

// StartChannel mounts an audience feed: an immediate initial fetch, then a
// poll on every interval tick until StopChannel or Stop.
func (s *Service) StartChannel(ctx context.Context, audience domain.Audience, interval time.Duration) error {
	s.mu.Lock()
	if _, exists := s.channels[audience]; exists {
		s.mu.Unlock()
		return fmt.Errorf("channel %s already started", audience)
	}
	cctx, cancel := context.WithCancel(ctx)
	ch := &channel{audience: audience, cancel: cancel}
	s.channels[audience] = ch
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(cctx, ch, interval)
	return nil
}

// StopChannel unmounts one audience feed and clears its timer. In-flight
// responses are discarded, not waited for.
func (s *Service) StopChannel(audience domain.Audience) {
	s.mu.Lock()
	ch := s.channels[audience]
	if ch != nil {
		delete(s.channels, audience)
	}
	s.mu.Unlock()
	if ch != nil {
		s.disarmEscalation(ch)
		ch.cancel()
	}
}

// Stop unmounts every channel and waits for the poll loops to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	chans := make([]*channel, 0, len(s.channels))
	for _, ch := range s.channels {
		chans = append(chans, ch)
	}
	s.channels = make(map[domain.Audience]*channel)
	s.mu.Unlock()

	for _, ch := range chans {
		s.disarmEscalation(ch)
		ch.cancel()
	}
	s.wg.Wait()
}

func (s *Service) run(ctx context.Context, ch *channel, interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.poll(ctx, ch)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A slow response must not stall the cadence: ticks overlap,
			// and the sequence guard in apply keeps late results from
			// clobbering newer ones.
			go s.poll(ctx, ch)
		}
	}
}

func (s *Service) poll(ctx context.Context, ch *channel) {
	seq := atomic.AddUint64(&ch.pollSeq, 1)

	count, err := s.store.RefreshCount(ctx, ch.audience)
	if err != nil {
		s.pollError(ch, err)
		return
	}

	if err := s.store.RefreshItems(ctx, ch.audience, s.fetchLimit); err != nil {
		// The count still applies; the page just stays one tick stale.
		if errors.Is(err, domain.ErrSessionExpired) {
			s.expireSession(ch)
			return
		}
		if !errors.Is(err, context.Canceled) {
			s.log.Warn().Err(err).Str("audience", string(ch.audience)).Msg("item refresh failed")
		}
	}

	s.apply(ctx, ch, seq, count)
}

func (s *Service) pollError(ch *channel, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		s.expireSession(ch)
	case errors.Is(err, context.Canceled):
		// Channel unmounted mid-flight.
	default:
		// Transient: keep last-good state and retry next tick.
		s.log.Warn().Err(err).Str("audience", string(ch.audience)).Msg("count poll failed")
	}
}

// apply folds a poll result into channel state and fires the alert when the
// count strictly increased. Equal or lower counts never alert, so a
// mark-all-read or a dropdown re-fetch returning the same number stays
// silent.
func (s *Service) apply(ctx context.Context, ch *channel, seq uint64, count int) {
	s.mu.Lock()
	if ctx.Err() != nil || seq <= ch.appliedSeq {
		s.mu.Unlock()
		return
	}
	ch.appliedSeq = seq
	ch.lastPolled = time.Now()

	prev := ch.prev
	ch.prev = count

	fire := count > prev
	if !ch.primed {
		ch.primed = true
		// Cold-start asymmetry: a freshly mounted admin feed alerts on a
		// pre-existing backlog so operators see it immediately; the client
		// bell only takes the first fetch as its baseline.
		fire = fire && ch.audience == domain.AudienceAdmin
	}
	if !fire {
		s.mu.Unlock()
		return
	}

	evt := domain.AlertEvent{
		ID:            id.New(),
		Audience:      ch.audience,
		PreviousCount: prev,
		NewCount:      count,
		FiredAt:       time.Now(),
	}
	ch.bellUntil = evt.FiredAt.Add(bellAnimation)
	s.mu.Unlock()

	s.deliver(ch, &evt)

	s.mu.Lock()
	s.journal = append(s.journal, evt)
	if len(s.journal) > journalCap {
		s.journal = s.journal[len(s.journal)-journalCap:]
	}
	s.mu.Unlock()
}

// deliver performs the side-effecting half of an alert, outside the lock.
func (s *Service) deliver(ch *channel, evt *domain.AlertEvent) {
	if ch.audience == domain.AudienceAdmin {
		s.audio.PlayLoopingAlert()
		s.armEscalation(ch, *evt)
	} else {
		s.audio.PlayOneShot()
	}

	if s.gate.Allowed() {
		title, message := s.describe(ch.audience, evt)
		if err := s.desktop.Notify(title, message); err != nil {
			s.log.Warn().Err(err).Msg("desktop notification failed")
		} else {
			evt.Desktop = true
		}
	}

	s.log.Info().
		Str("audience", string(ch.audience)).
		Int("previous", evt.PreviousCount).
		Int("count", evt.NewCount).
		Bool("desktop", evt.Desktop).
		Msg("alert fired")
}

func (s *Service) describe(audience domain.Audience, evt *domain.AlertEvent) (string, string) {
	items, _ := s.store.Snapshot(audience)
	for _, it := range items {
		if !it.IsRead {
			return it.Title, it.Message
		}
	}
	return "New notifications", fmt.Sprintf("You have %d unread notifications", evt.NewCount)
}

// Acknowledge silences the looping alert for a channel and cancels any
// pending escalation. Safe to call when nothing is looping.
func (s *Service) Acknowledge(audience domain.Audience) {
	s.audio.StopLoopingAlert()
	s.mu.Lock()
	ch := s.channels[audience]
	s.mu.Unlock()
	if ch != nil {
		s.disarmEscalation(ch)
	}
}

func (s *Service) armEscalation(ch *channel, evt domain.AlertEvent) {
	if s.escalator == nil || s.escalationDelay <= 0 {
		return
	}
	s.mu.Lock()
	if ch.escalation != nil {
		ch.escalation.Stop()
	}
	ch.escalation = time.AfterFunc(s.escalationDelay, func() {
		// Only escalate if nobody silenced the alert in the meantime.
		if s.audio.IsLooping() {
			s.escalator.Escalate(evt)
		}
	})
	s.mu.Unlock()
}

func (s *Service) disarmEscalation(ch *channel) {
	s.mu.Lock()
	if ch.escalation != nil {
		ch.escalation.Stop()
		ch.escalation = nil
	}
	s.mu.Unlock()
}

// expireSession marks the channel dead and stops its poller. Auth is an
// external collaborator: the UI observes the flag and performs the
// logout/redirect; the agent never retries an expired session.
func (s *Service) expireSession(ch *channel) {
	s.mu.Lock()
	ch.sessionExpired = true
	s.mu.Unlock()
	s.log.Error().Str("audience", string(ch.audience)).Msg("session expired, polling stopped")
	ch.cancel()
}

// Snapshot returns the UI-facing view of a channel. An unmounted audience
// yields an empty snapshot with the current permission status.
func (s *Service) Snapshot(audience domain.Audience) domain.ChannelSnapshot {
	items, unread := s.store.Snapshot(audience)
	snap := domain.ChannelSnapshot{
		Audience:    audience,
		Items:       items,
		UnreadCount: unread,
		Permission:  s.gate.Status(),
	}

	s.mu.Lock()
	if ch := s.channels[audience]; ch != nil {
		snap.BellRinging = time.Now().Before(ch.bellUntil)
		snap.SessionExpired = ch.sessionExpired
		snap.LastPolledAt = ch.lastPolled
	}
	s.mu.Unlock()

	if audience == domain.AudienceAdmin {
		snap.AlertLooping = s.audio.IsLooping()
	}
	return snap
}

// RecentAlerts returns the alert journal, most recent first.
func (s *Service) RecentAlerts() []domain.AlertEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AlertEvent, len(s.journal))
	for i, evt := range s.journal {
		out[len(s.journal)-1-i] = evt
	}
	return out
}
