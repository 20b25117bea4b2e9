package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-notify-agent/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockBackend struct{ mock.Mock }

func (m *mockBackend) ListRecent(ctx context.Context, audience domain.Audience, limit int) ([]domain.NotificationItem, error) {
	args := m.Called(ctx, audience, limit)
	if items, _ := args.Get(0).([]domain.NotificationItem); items != nil {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockBackend) UnreadCount(ctx context.Context, audience domain.Audience) (int, error) {
	args := m.Called(ctx, audience)
	return args.Int(0), args.Error(1)
}
func (m *mockBackend) MarkRead(ctx context.Context, audience domain.Audience, id string) error {
	return m.Called(ctx, audience, id).Error(0)
}
func (m *mockBackend) MarkAllRead(ctx context.Context, audience domain.Audience) error {
	return m.Called(ctx, audience).Error(0)
}

// --- helpers ---

func item(id string, read bool) domain.NotificationItem {
	return domain.NotificationItem{
		ID:        id,
		Type:      domain.TypeApproval,
		Title:     "Account approved",
		Message:   "Your account request was approved",
		IsRead:    read,
		CreatedAt: time.Now().UTC(),
	}
}

func primedService(t *testing.T, b *mockBackend, items []domain.NotificationItem, unread int) Service {
	t.Helper()
	svc := NewService(b)
	b.On("ListRecent", mock.Anything, domain.AudienceClient, 10).Return(items, nil).Once()
	b.On("UnreadCount", mock.Anything, domain.AudienceClient).Return(unread, nil).Once()
	require.NoError(t, svc.RefreshItems(context.Background(), domain.AudienceClient, 10))
	_, err := svc.RefreshCount(context.Background(), domain.AudienceClient)
	require.NoError(t, err)
	return svc
}

// --- tests ---

func TestMarkReadDecrementsCounter(t *testing.T) {
	b := new(mockBackend)
	svc := primedService(t, b, []domain.NotificationItem{item("n1", false)}, 3)

	b.On("MarkRead", mock.Anything, domain.AudienceClient, "n1").Return(nil).Once()
	require.NoError(t, svc.MarkRead(context.Background(), domain.AudienceClient, "n1"))

	items, unread := svc.Snapshot(domain.AudienceClient)
	assert.Equal(t, 2, unread)
	assert.True(t, items[0].IsRead)
	b.AssertExpectations(t)
}

func TestMarkReadIdempotent(t *testing.T) {
	b := new(mockBackend)
	svc := primedService(t, b, []domain.NotificationItem{item("n1", false)}, 3)

	b.On("MarkRead", mock.Anything, domain.AudienceClient, "n1").Return(nil).Once()
	require.NoError(t, svc.MarkRead(context.Background(), domain.AudienceClient, "n1"))
	// Second call sees the local copy already read: no backend call, no
	// double decrement.
	require.NoError(t, svc.MarkRead(context.Background(), domain.AudienceClient, "n1"))

	_, unread := svc.Snapshot(domain.AudienceClient)
	assert.Equal(t, 2, unread)
	b.AssertNumberOfCalls(t, "MarkRead", 1)
}

func TestMarkReadOffPageIdempotent(t *testing.T) {
	// The clicked item fell off the truncated page, so the local copy cannot
	// vouch for it. The backend answers an already-read item with the same
	// 200, so a retry must be stopped locally or the counter decrements
	// twice.
	b := new(mockBackend)
	svc := primedService(t, b, nil, 2)

	b.On("MarkRead", mock.Anything, domain.AudienceClient, "offpage").Return(nil).Once()
	require.NoError(t, svc.MarkRead(context.Background(), domain.AudienceClient, "offpage"))
	require.NoError(t, svc.MarkRead(context.Background(), domain.AudienceClient, "offpage"))

	_, unread := svc.Snapshot(domain.AudienceClient)
	assert.Equal(t, 1, unread)
	b.AssertNumberOfCalls(t, "MarkRead", 1)
}

func TestMarkReadSurvivesPageShift(t *testing.T) {
	// n1 is marked read on-page, then a newer page pushes it off. A late
	// retry must still be recognized as a no-op.
	b := new(mockBackend)
	svc := primedService(t, b, []domain.NotificationItem{item("n1", false)}, 3)

	b.On("MarkRead", mock.Anything, domain.AudienceClient, "n1").Return(nil).Once()
	require.NoError(t, svc.MarkRead(context.Background(), domain.AudienceClient, "n1"))

	b.On("ListRecent", mock.Anything, domain.AudienceClient, 10).
		Return([]domain.NotificationItem{item("n9", false)}, nil).Once()
	require.NoError(t, svc.RefreshItems(context.Background(), domain.AudienceClient, 10))

	require.NoError(t, svc.MarkRead(context.Background(), domain.AudienceClient, "n1"))

	_, unread := svc.Snapshot(domain.AudienceClient)
	assert.Equal(t, 2, unread)
	b.AssertNumberOfCalls(t, "MarkRead", 1)
}

func TestRefreshItemsAppliesOffPageAck(t *testing.T) {
	// An item acknowledged while off-page shows up read when a later page
	// carries it again, even if the backend copy is stale.
	b := new(mockBackend)
	svc := primedService(t, b, nil, 2)

	b.On("MarkRead", mock.Anything, domain.AudienceClient, "n1").Return(nil).Once()
	require.NoError(t, svc.MarkRead(context.Background(), domain.AudienceClient, "n1"))

	b.On("ListRecent", mock.Anything, domain.AudienceClient, 10).
		Return([]domain.NotificationItem{item("n1", false)}, nil).Once()
	require.NoError(t, svc.RefreshItems(context.Background(), domain.AudienceClient, 10))

	items, _ := svc.Snapshot(domain.AudienceClient)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsRead)
}

func TestMarkReadClampsAtZero(t *testing.T) {
	b := new(mockBackend)
	svc := primedService(t, b, []domain.NotificationItem{item("n1", false)}, 0)

	b.On("MarkRead", mock.Anything, domain.AudienceClient, "n1").Return(nil).Once()
	require.NoError(t, svc.MarkRead(context.Background(), domain.AudienceClient, "n1"))

	_, unread := svc.Snapshot(domain.AudienceClient)
	assert.Equal(t, 0, unread)
}

func TestMarkAllReadZerosGlobalCounter(t *testing.T) {
	// Truncated page: 5 cached items but 12 unread globally.
	b := new(mockBackend)
	page := []domain.NotificationItem{
		item("n1", false), item("n2", false), item("n3", true),
		item("n4", false), item("n5", false),
	}
	svc := primedService(t, b, page, 12)

	b.On("MarkAllRead", mock.Anything, domain.AudienceClient).Return(nil).Once()
	require.NoError(t, svc.MarkAllRead(context.Background(), domain.AudienceClient))

	items, unread := svc.Snapshot(domain.AudienceClient)
	assert.Equal(t, 0, unread)
	for _, it := range items {
		assert.True(t, it.IsRead)
	}
}

func TestMarkAllReadClearsLocallyEvenWhenBackendFails(t *testing.T) {
	b := new(mockBackend)
	svc := primedService(t, b, []domain.NotificationItem{item("n1", false)}, 4)

	b.On("MarkAllRead", mock.Anything, domain.AudienceClient).Return(errors.New("boom")).Once()
	err := svc.MarkAllRead(context.Background(), domain.AudienceClient)
	require.Error(t, err)

	// Optimistic clear already applied; the next poll reconciles.
	items, unread := svc.Snapshot(domain.AudienceClient)
	assert.Equal(t, 0, unread)
	assert.True(t, items[0].IsRead)
}

func TestRefreshCountKeepsLastGoodOnError(t *testing.T) {
	b := new(mockBackend)
	svc := primedService(t, b, nil, 7)

	b.On("UnreadCount", mock.Anything, domain.AudienceClient).Return(0, errors.New("timeout")).Once()
	_, err := svc.RefreshCount(context.Background(), domain.AudienceClient)
	require.Error(t, err)

	_, unread := svc.Snapshot(domain.AudienceClient)
	assert.Equal(t, 7, unread)
}

func TestRefreshItemsKeepsLastGoodOnError(t *testing.T) {
	b := new(mockBackend)
	svc := primedService(t, b, []domain.NotificationItem{item("n1", false)}, 1)

	b.On("ListRecent", mock.Anything, domain.AudienceClient, 10).Return(nil, errors.New("timeout")).Once()
	require.Error(t, svc.RefreshItems(context.Background(), domain.AudienceClient, 10))

	items, _ := svc.Snapshot(domain.AudienceClient)
	require.Len(t, items, 1)
	assert.Equal(t, "n1", items[0].ID)
}

func TestRefreshItemsNeverRevertsLocalRead(t *testing.T) {
	b := new(mockBackend)
	svc := primedService(t, b, []domain.NotificationItem{item("n1", false)}, 2)

	b.On("MarkRead", mock.Anything, domain.AudienceClient, "n1").Return(nil).Once()
	require.NoError(t, svc.MarkRead(context.Background(), domain.AudienceClient, "n1"))

	// A stale backend page still reports n1 unread; the local read flag wins.
	b.On("ListRecent", mock.Anything, domain.AudienceClient, 10).
		Return([]domain.NotificationItem{item("n1", false)}, nil).Once()
	require.NoError(t, svc.RefreshItems(context.Background(), domain.AudienceClient, 10))

	items, _ := svc.Snapshot(domain.AudienceClient)
	assert.True(t, items[0].IsRead)
}

func TestChannelsAreIsolated(t *testing.T) {
	b := new(mockBackend)
	svc := NewService(b)

	b.On("UnreadCount", mock.Anything, domain.AudienceAdmin).Return(9, nil).Once()
	_, err := svc.RefreshCount(context.Background(), domain.AudienceAdmin)
	require.NoError(t, err)

	_, clientUnread := svc.Snapshot(domain.AudienceClient)
	_, adminUnread := svc.Snapshot(domain.AudienceAdmin)
	assert.Equal(t, 0, clientUnread)
	assert.Equal(t, 9, adminUnread)
}
