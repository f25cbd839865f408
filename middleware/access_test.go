package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/handlers"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/models"
)

type staticSession models.SessionState

func (s staticSession) Snapshot() models.SessionState { return models.SessionState(s) }

func signedIn(role models.Role) staticSession {
	return staticSession{Token: "t1", User: &models.UserProfile{ID: "1", Role: role}, Status: models.StatusAuthenticated}
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	user, _ := r.Context().Value(handlers.UserContextKey).(*models.UserProfile)
	if user != nil {
		w.Header().Set("X-User", string(user.ID))
	}
	w.WriteHeader(http.StatusOK)
})

func serve(mw func(http.Handler) http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mw(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestProtect(t *testing.T) {
	tests := []struct {
		name     string
		session  staticSession
		path     string
		status   int
		location string
	}{
		{"loading", staticSession{Loading: true}, "/admin", http.StatusServiceUnavailable, ""},
		{"signed out view", staticSession{}, "/admin?tab=users", http.StatusFound, "/login?returnTo=%2Fadmin%3Ftab%3Dusers"},
		{"signed out api", staticSession{}, "/api/backend/projects", http.StatusUnauthorized, ""},
		{"wrong role view", signedIn(models.RoleUser), "/admin", http.StatusFound, "/unauthorized?roles=Admin"},
		{"wrong role api", signedIn(models.RoleUser), "/api/admin/stats", http.StatusForbidden, ""},
		{"allowed", signedIn(models.RoleAdmin), "/admin", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAccessMiddleware(tt.session)
			rec := serve(m.Protect(models.RoleAdmin), tt.path)

			assert.Equal(t, tt.status, rec.Code)
			if tt.location != "" {
				assert.Equal(t, tt.location, rec.Header().Get("Location"))
			}
			if tt.status == http.StatusServiceUnavailable {
				assert.Equal(t, "1", rec.Header().Get("Retry-After"))
			}
			if tt.status == http.StatusOK {
				assert.Equal(t, "1", rec.Header().Get("X-User"))
			}
		})
	}
}

func TestGuestOnlyMiddleware(t *testing.T) {
	m := NewAccessMiddleware(signedIn(models.RoleUser))
	rec := serve(m.GuestOnly, "/login")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, HomePath, rec.Header().Get("Location"))

	rec = serve(m.GuestOnly, "/api/auth/login")
	assert.Equal(t, http.StatusConflict, rec.Code)

	m = NewAccessMiddleware(staticSession{})
	rec = serve(m.GuestOnly, "/signup")
	assert.Equal(t, http.StatusOK, rec.Code)
}
