package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://backend.local/api/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://backend.local/api", cfg.Backend.BaseURL)
	assert.Equal(t, 15*time.Minute, cfg.Session.Lifetime)
	assert.Equal(t, 5*time.Minute, cfg.Session.RefreshAhead)
	assert.Equal(t, 2*time.Minute, cfg.Session.WarningThreshold)
	assert.Equal(t, time.Second, cfg.Session.TickInterval)
	assert.True(t, cfg.Session.TrustTokenExpiry)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.UI.AllowedOrigins)
}

func TestLoadRequiresBackendURL(t *testing.T) {
	t.Setenv("BACKEND_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BACKEND_URL")
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://backend.local")
	t.Setenv("SESSION_LIFETIME", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_LIFETIME")
}

func TestValidateThresholds(t *testing.T) {
	base := Config{
		Backend: BackendConfig{BaseURL: "http://x", Timeout: time.Second},
		Session: SessionConfig{
			Lifetime:         15 * time.Minute,
			RefreshAhead:     5 * time.Minute,
			WarningThreshold: 2 * time.Minute,
			TickInterval:     time.Second,
		},
	}
	require.NoError(t, base.Validate())

	tooLong := base
	tooLong.Session.WarningThreshold = 15 * time.Minute
	assert.Error(t, tooLong.Validate())

	badKey := base
	badKey.Store.EncryptionKey = "abcd"
	assert.Error(t, badKey.Validate())

	goodKey := base
	goodKey.Store.EncryptionKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	assert.NoError(t, goodKey.Validate())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a , ,b "))
	assert.Nil(t, splitList(""))
}
