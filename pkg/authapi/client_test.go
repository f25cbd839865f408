package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/models"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg/authtest"
)

func TestClientLoginDecodesNumericUserID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, LoginPath, r.URL.Path)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.com", body["email"])
		assert.Equal(t, "Secret1!", body["password"])

		w.Write([]byte(`{"token":"t1","refreshToken":"r1","user":{"id":1,"role":"User"}}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, time.Second).Login(context.Background(),
		models.LoginRequest{Email: "a@b.com", Password: "Secret1!"})
	require.NoError(t, err)

	assert.Equal(t, models.TokenPair{AccessToken: "t1", RefreshToken: "r1"}, resp.Pair())
	require.NotNil(t, resp.User)
	assert.Equal(t, models.UserID("1"), resp.User.ID)
	assert.Equal(t, models.RoleUser, resp.User.Role)
}

func TestClientRegisterSendsConfirmPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body models.RegisterPayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, body.Password, body.ConfirmPassword)
		assert.Equal(t, "Ada", body.FirstName)
		w.Write([]byte(`{"user":{"id":"u1","email":"a@b.com","role":"User"}}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL+"/", time.Second).Register(context.Background(),
		models.RegisterRequest{FirstName: "Ada", Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)
	assert.False(t, resp.Pair().Complete())
	assert.Equal(t, "a@b.com", resp.User.Email)
}

func TestClientErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		message  string
	}{
		{"bad request with message", http.StatusBadRequest, `{"message":"Email taken"}`, pkg.ErrAuthRejected, "Email taken"},
		{"unauthorized with error field", http.StatusUnauthorized, `{"error":"Invalid credentials"}`, pkg.ErrAuthRejected, "Invalid credentials"},
		{"unauthorized without body", http.StatusUnauthorized, ``, pkg.ErrAuthRejected, ""},
		{"server error", http.StatusInternalServerError, `{"title":"Boom"}`, pkg.ErrServer, "Boom"},
		{"garbage success body", http.StatusOK, `not json`, pkg.ErrServer, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).Login(context.Background(),
				models.LoginRequest{Email: "a@b.com", Password: "x"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.message, pkg.ServerMessage(err))
		})
	}
}

func TestClientNetworkUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Login(context.Background(),
		models.LoginRequest{Email: "a@b.com", Password: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkg.ErrNetworkUnreachable))
}

func TestClientRefreshRotatesAgainstBackend(t *testing.T) {
	backend := authtest.New(t)
	backend.AddUser(t, "a@b.com", "Secret1!", models.RoleAdmin)
	client := NewClient(backend.URL(), time.Second)
	ctx := context.Background()

	login, err := client.Login(ctx, models.LoginRequest{Email: "a@b.com", Password: "Secret1!"})
	require.NoError(t, err)

	refreshed, err := client.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.True(t, refreshed.Pair().Complete())
	assert.Nil(t, refreshed.User)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// Eski refresh token tek kullanımlıktır
	_, err = client.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, pkg.ErrAuthRejected)
	assert.Equal(t, 2, backend.RefreshCalls())
}

func TestBearerHeaderApply(t *testing.T) {
	header := NewBearerHeader()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer stale")

	header.Apply(req)
	_, present := req.Header["Authorization"]
	assert.False(t, present, "empty token must remove the header entirely")

	header.Set("t1")
	header.Apply(req)
	assert.Equal(t, "Bearer t1", req.Header.Get("Authorization"))

	header.Clear()
	assert.Empty(t, header.Token())
}
