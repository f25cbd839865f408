package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/config"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/models"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg/authtest"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg/i18n"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/ws"
)

type portal struct {
	backend *authtest.Backend
	svcs    *Services
	mux     *http.ServeMux
}

func newPortal(t *testing.T) *portal {
	t.Helper()
	require.NoError(t, i18n.LoadEmbedded())

	backend := authtest.New(t)
	backend.AddUser(t, "user@b.com", "pw", models.RoleUser)
	backend.AddUser(t, "admin@b.com", "pw", models.RoleAdmin)

	cfg := &config.Config{
		Backend: config.BackendConfig{BaseURL: backend.URL(), Timeout: 5 * time.Second},
		Store:   config.StoreConfig{Path: memoryStorePath},
		Session: config.SessionConfig{
			Lifetime:         15 * time.Minute,
			RefreshAhead:     5 * time.Minute,
			WarningThreshold: 2 * time.Minute,
			TickInterval:     time.Second,
		},
		UI: config.UIConfig{Language: "en", LoginMaxAttempts: 5, LoginWindow: 2 * time.Minute},
	}
	require.NoError(t, cfg.Validate())

	localizer := i18n.NewLocalizer(cfg.UI.Language)
	store, closeStore, err := initTokenStore(cfg.Store)
	require.NoError(t, err)

	hub := ws.NewHub()
	svcs, limiters := initServices(cfg, store, hub, localizer)
	registerCallbacks(hub, svcs)
	go hub.Run()

	svcs.Monitor.Start()
	h, err := initHandlers(svcs, limiters, hub, cfg, localizer)
	require.NoError(t, err)

	mux := http.NewServeMux()
	initRoutes(mux, h, svcs.Session)

	t.Cleanup(func() {
		svcs.Monitor.Stop()
		limiters.Login.Stop()
		hub.Shutdown()
		closeStore()
	})
	return &portal{backend: backend, svcs: svcs, mux: mux}
}

func (p *portal) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	p.mux.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func (p *portal) login(t *testing.T, email string) {
	t.Helper()
	rec := p.do(t, http.MethodPost, "/api/auth/login", models.LoginRequest{Email: email, Password: "pw"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRoutesPendingUntilInitialized(t *testing.T) {
	p := newPortal(t)

	rec := p.do(t, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.NoError(t, p.svcs.Session.Initialize(t.Context()))
	rec = p.do(t, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?returnTo=%2Fdashboard", rec.Header().Get("Location"))
}

func TestRoutesRoleGating(t *testing.T) {
	p := newPortal(t)
	require.NoError(t, p.svcs.Session.Initialize(t.Context()))
	p.login(t, "user@b.com")

	assert.Equal(t, http.StatusOK, p.do(t, http.MethodGet, "/dashboard", nil).Code)

	rec := p.do(t, http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/unauthorized?roles=Admin", rec.Header().Get("Location"))

	assert.Equal(t, http.StatusOK, p.do(t, http.MethodGet, "/unauthorized?roles=Admin", nil).Code)

	rec = p.do(t, http.MethodGet, "/login", nil)
	assert.Equal(t, http.StatusFound, rec.Code, "guest-only view redirects signed-in users")

	rec = p.do(t, http.MethodPost, "/api/auth/login", models.LoginRequest{Email: "admin@b.com", Password: "pw"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRoutesBackendProxyAndLogout(t *testing.T) {
	p := newPortal(t)
	require.NoError(t, p.svcs.Session.Initialize(t.Context()))

	rec := p.do(t, http.MethodGet, "/api/backend"+authtest.MePath, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "proxy is protected")
	assert.Zero(t, p.backend.ProtectedCalls())

	p.login(t, "admin@b.com")
	p.backend.ExpireAccessTokens()

	rec = p.do(t, http.MethodGet, "/api/backend"+authtest.MePath, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, p.backend.RefreshCalls())

	_, armed := p.svcs.Monitor.Timer()
	assert.True(t, armed)

	assert.Equal(t, http.StatusOK, p.do(t, http.MethodPost, "/api/auth/logout", nil).Code)
	_, armed = p.svcs.Monitor.Timer()
	assert.False(t, armed, "logout disarms the monitor")
	assert.Equal(t, http.StatusFound, p.do(t, http.MethodGet, "/admin", nil).Code)
}

func TestHealth(t *testing.T) {
	p := newPortal(t)
	rec := p.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"portal"}`, rec.Body.String())
}
