package ws

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/models"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg/i18n"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Broadcast(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Op
	}
	return out
}

func (r *recorder) last() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func authed(token string) models.SessionState {
	return models.SessionState{
		Token:  token,
		User:   &models.UserProfile{ID: "1", Email: "a@b.com", Role: models.RoleUser},
		Status: models.StatusAuthenticated,
	}
}

func newBridge(t *testing.T) (*SessionBridge, *recorder) {
	t.Helper()
	require.NoError(t, i18n.LoadEmbedded())
	rec := &recorder{}
	return NewSessionBridge(rec, i18n.NewLocalizer("en")), rec
}

func TestBridgeLifecycleEvents(t *testing.T) {
	b, rec := newBridge(t)

	b.OnSessionChange(models.SessionState{Status: models.StatusUnauthenticated})
	b.OnSessionChange(models.SessionState{Status: models.StatusAuthenticating})
	b.OnSessionChange(authed("t1"))
	b.OnSessionChange(models.SessionState{Token: "t1", User: authed("t1").User, Status: models.StatusRefreshing})
	b.OnSessionChange(authed("t2"))
	b.OnSessionChange(models.SessionState{Status: models.StatusLoggedOut})
	b.OnSessionChange(models.SessionState{Status: models.StatusLoggedOut})

	assert.Equal(t, []string{OpSessionStarted, OpSessionRefreshed, OpSessionLogout}, rec.ops())
}

func TestBridgeExpiryIsSingleEvent(t *testing.T) {
	b, rec := newBridge(t)

	b.OnSessionChange(authed("t1"))
	expired := models.SessionState{Status: models.StatusLoggedOut, Error: "Your session has expired. Please sign in again."}
	b.OnSessionChange(expired)
	b.OnSessionChange(expired)

	assert.Equal(t, []string{OpSessionStarted, OpSessionExpired}, rec.ops())
	assert.Equal(t, SessionEndedData{Message: expired.Error}, rec.last().Data)
}

func TestBridgeFailedLoginFromLoggedOutIsSilent(t *testing.T) {
	b, rec := newBridge(t)

	b.OnSessionChange(models.SessionState{Status: models.StatusLoggedOut, Error: "Invalid email or password"})
	assert.Empty(t, rec.ops())
}

func TestBridgeWarning(t *testing.T) {
	b, rec := newBridge(t)

	b.WarningShown(119*time.Second + 300*time.Millisecond)
	assert.Equal(t, SessionWarningData{
		RemainingSeconds: 120,
		Message:          "Your session will expire in 120 seconds.",
	}, rec.last().Data)

	b.WarningCleared()
	assert.Equal(t, OpSessionWarningCleared, rec.last().Op)
}

func TestBridgeWithoutLocalizer(t *testing.T) {
	rec := &recorder{}
	b := NewSessionBridge(rec, nil)

	b.WarningShown(30 * time.Second)
	assert.Equal(t, SessionWarningData{RemainingSeconds: 30}, rec.last().Data)
}
