package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-notify-agent/internal/domain"
	jwtinfra "github.com/go-notify-agent/internal/infrastructure/jwt"
)

// TokenSource supplies the bearer token for an audience. Tokens are issued
// and refreshed by the external auth collaborator; the agent only reads them.
type TokenSource func(audience domain.Audience) string

// Client talks to the storefront backend's notification endpoints. One
// client serves both audiences; each request is namespaced by audience and
// authenticated with that audience's bearer token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

// countEnvelope mirrors the unread-count endpoint response.
type countEnvelope struct {
	Count int `json:"count"`
}

func (c *Client) ListRecent(ctx context.Context, audience domain.Audience, limit int) ([]domain.NotificationItem, error) {
	path := fmt.Sprintf("/%s/notifications?limit=%s", audience, strconv.Itoa(limit))
	body, err := c.do(ctx, http.MethodGet, audience, path)
	if err != nil {
		return nil, err
	}
	var items []domain.NotificationItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	return items, nil
}

func (c *Client) UnreadCount(ctx context.Context, audience domain.Audience) (int, error) {
	body, err := c.do(ctx, http.MethodGet, audience, fmt.Sprintf("/%s/notifications/unread-count", audience))
	if err != nil {
		return 0, err
	}
	var env countEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return 0, fmt.Errorf("decode unread count: %w", err)
	}
	if env.Count < 0 {
		return 0, nil
	}
	return env.Count, nil
}

func (c *Client) MarkRead(ctx context.Context, audience domain.Audience, id string) error {
	path := fmt.Sprintf("/%s/notifications/%s/read", audience, url.PathEscape(id))
	_, err := c.do(ctx, http.MethodPut, audience, path)
	return err
}

func (c *Client) MarkAllRead(ctx context.Context, audience domain.Audience) error {
	_, err := c.do(ctx, http.MethodPut, audience, fmt.Sprintf("/%s/notifications/mark-all-read", audience))
	return err
}

func (c *Client) do(ctx context.Context, method string, audience domain.Audience, path string) ([]byte, error) {
	token := c.tokens(audience)
	if token == "" {
		return nil, fmt.Errorf("%s: no bearer token: %w", audience, domain.ErrUnauthorized)
	}
	// Preflight: a token already past exp would only bounce off the backend
	// as a 401; treat it as an expired session without the round trip.
	if jwtinfra.Expired(token, time.Now()) {
		return nil, fmt.Errorf("%s: bearer token past exp: %w", audience, domain.ErrSessionExpired)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%s %s: %w", method, path, domain.ErrSessionExpired)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s %s: %w", method, path, domain.ErrNotFound)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
