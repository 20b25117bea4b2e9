package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4600", cfg.AppPort)
	assert.Equal(t, "http://localhost:8080/api", cfg.BackendBaseURL)
	assert.Equal(t, []string{"admin", "client"}, cfg.Channels)
	assert.Equal(t, 10*time.Second, cfg.AdminPollInterval)
	assert.Equal(t, 30*time.Second, cfg.ClientPollInterval)
	assert.Equal(t, 15, cfg.FetchLimit)
	assert.Zero(t, cfg.Escalation.Delay, "escalation is off unless configured")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "https://store.example.com/api")
	t.Setenv("CHANNELS", "client")
	t.Setenv("CLIENT_POLL_INTERVAL", "45s")
	t.Setenv("FETCH_LIMIT", "25")
	t.Setenv("ESCALATION_DELAY", "2m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://store.example.com/api", cfg.BackendBaseURL)
	assert.Equal(t, []string{"client"}, cfg.Channels)
	assert.Equal(t, 45*time.Second, cfg.ClientPollInterval)
	assert.Equal(t, 25, cfg.FetchLimit)
	assert.Equal(t, 2*time.Minute, cfg.Escalation.Delay)
}

func TestLoadRejectsBadBackendURL(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "not a url")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownChannel(t *testing.T) {
	t.Setenv("CHANNELS", "admin,moderator")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsFetchLimitOutOfRange(t *testing.T) {
	t.Setenv("FETCH_LIMIT", "500")
	_, err := Load()
	assert.Error(t, err)
}

func TestPollInterval(t *testing.T) {
	cfg := &Config{AdminPollInterval: 10 * time.Second, ClientPollInterval: 30 * time.Second}
	assert.Equal(t, 10*time.Second, cfg.PollInterval("admin"))
	assert.Equal(t, 30*time.Second, cfg.PollInterval("client"))
}
