package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-notify-agent/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticTokens(admin, client string) TokenSource {
	return func(audience domain.Audience) string {
		if audience == domain.AudienceAdmin {
			return admin
		}
		return client
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second, staticTokens("admin-token", "client-token"))
}

func TestListRecentDecodesAndAuthenticates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/client/notifications", r.URL.Path)
		assert.Equal(t, "15", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer client-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"n1","type":"new_order","title":"New order","message":"Order #7","is_read":false}]`))
	})

	items, err := c.ListRecent(context.Background(), domain.AudienceClient, 15)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "n1", items[0].ID)
	assert.Equal(t, domain.TypeNewOrder, items[0].Type)
	assert.False(t, items[0].IsRead)
}

func TestUnreadCount(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/notifications/unread-count", r.URL.Path)
		assert.Equal(t, "Bearer admin-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"count":12}`))
	})

	count, err := c.UnreadCount(context.Background(), domain.AudienceAdmin)
	require.NoError(t, err)
	assert.Equal(t, 12, count)
}

func TestUnreadCountClampsNegative(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"count":-3}`))
	})

	count, err := c.UnreadCount(context.Background(), domain.AudienceClient)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMarkReadUsesPutAndEscapesID(t *testing.T) {
	var method, path atomic.Value
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method.Store(r.Method)
		path.Store(r.URL.EscapedPath())
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.MarkRead(context.Background(), domain.AudienceClient, "n/1"))
	assert.Equal(t, http.MethodPut, method.Load())
	assert.Equal(t, "/client/notifications/n%2F1/read", path.Load())
}

func TestUnauthorizedMapsToSessionExpired(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.UnreadCount(context.Background(), domain.AudienceClient)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestNotFoundMapsToDomainError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	err := c.MarkRead(context.Background(), domain.AudienceClient, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("request must not reach the backend")
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, time.Second, staticTokens("admin-token", ""))

	_, err := c.UnreadCount(context.Background(), domain.AudienceClient)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestExpiredTokenShortCircuits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("request must not reach the backend")
	}))
	t.Cleanup(srv.Close)

	// The preflight reads exp without verifying, so any signing method works.
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	tokenStr, err := expired.SignedString([]byte("irrelevant"))
	require.NoError(t, err)

	c := NewClient(srv.URL, time.Second, staticTokens(tokenStr, tokenStr))
	_, err = c.UnreadCount(context.Background(), domain.AudienceAdmin)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestOpaqueTokenIsForwarded(t *testing.T) {
	var hit atomic.Bool
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hit.Store(true)
		w.Write([]byte(`{"count":0}`))
	})

	_, err := c.UnreadCount(context.Background(), domain.AudienceClient)
	require.NoError(t, err)
	assert.True(t, hit.Load(), "non-JWT tokens are the backend's problem, not ours")
}
