package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/models"
)

func TestSessionGetDuringLoading(t *testing.T) {
	f := newFixture(t)

	rec, env := call(t, f.sess.Get, http.MethodGet, "/api/auth/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeView(t, env)
	assert.True(t, view.Loading)
	assert.False(t, view.Authenticated)
}

func TestSessionGetSignedIn(t *testing.T) {
	f := newFixture(t).signedIn(t)

	_, env := call(t, f.sess.Get, http.MethodGet, "/api/auth/session", nil)
	view := decodeView(t, env)
	assert.False(t, view.Loading)
	assert.True(t, view.Authenticated)
	require.NotNil(t, view.Timer)
	assert.False(t, view.Timer.WarningShown)
}

func TestSessionExtendRotatesTokens(t *testing.T) {
	f := newFixture(t).signedIn(t)
	before := f.header.Token()

	rec, env := call(t, f.sess.Extend, http.MethodPost, "/api/session/extend", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeView(t, env).Authenticated)
	assert.Equal(t, 1, f.backend.RefreshCalls())
	assert.NotEqual(t, before, f.header.Token())
}

func TestSessionExtendFailureLogsOut(t *testing.T) {
	f := newFixture(t).signedIn(t)
	f.backend.RevokeRefreshTokens()

	rec, env := call(t, f.sess.Extend, http.MethodPost, "/api/session/extend", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Your session has expired. Please sign in again.", env.Error)

	state := f.session.Snapshot()
	assert.Equal(t, models.StatusLoggedOut, state.Status)
	assert.Empty(t, f.header.Token())
	_, armed := f.monitor.Timer()
	assert.False(t, armed)
}

func TestSessionActivity(t *testing.T) {
	f := newFixture(t).signedIn(t)

	rec, env := call(t, f.sess.Activity, http.MethodPost, "/api/session/activity", map[string]string{"kind": "wiggle"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, "unknown activity kind")

	rec, _ = call(t, f.sess.Activity, http.MethodPost, "/api/session/activity", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Refresh-ahead eşiğinin altında aktivite refresh tetikler.
	f.clock.Add(11 * time.Minute)
	assert.Zero(t, f.backend.RefreshCalls(), "no tick fired inside the refresh window")

	rec, _ = call(t, f.sess.Activity, http.MethodPost, "/api/session/activity", map[string]string{"kind": "key_down"})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Eventually(t, func() bool { return f.backend.RefreshCalls() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		timer, ok := f.monitor.Timer()
		return ok && timer.ExpiresAt.Equal(f.clock.Now().Add(15*time.Minute))
	}, 2*time.Second, 10*time.Millisecond)
}
