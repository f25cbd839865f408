// Package authtest, testler için sahte bir portfolio backend'i sağlar.
//
// Üç auth endpoint'ini (login, register, refresh-token) ve bearer isteyen
// korumalı kaynakları httptest.Server üzerinde çalıştırır. Access token'lar
// HS256 ile imzalanmış JWT'dir, şifreler bcrypt ile saklanır.
//
// Testler access token'ları istediği an geçersiz kılabilir
// (ExpireAccessTokens), refresh'i yavaşlatabilir veya başarısız yapabilir.
package authtest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/models"
)

// Korumalı kaynak path'leri.
const (
	MePath   = "/api/me"
	EchoPath = "/api/echo"
)

type account struct {
	profile      models.UserProfile
	passwordHash []byte
}

// Backend, sahte auth backend'i.
type Backend struct {
	Server *httptest.Server

	secret []byte

	mu            sync.Mutex
	accounts      map[string]*account // email → account
	accessTokens  map[string]string   // jti → email
	refreshTokens map[string]string   // refresh token → email

	refreshDelay      time.Duration
	refreshStatus     int
	refreshWithUser   bool
	autoLoginOnSignUp bool

	loginCalls     atomic.Int32
	registerCalls  atomic.Int32
	refreshCalls   atomic.Int32
	protectedCalls atomic.Int32
}

// New, backend'i başlatır ve test bitince kapatır.
func New(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		secret:            []byte(uuid.NewString()),
		accounts:          make(map[string]*account),
		accessTokens:      make(map[string]string),
		refreshTokens:     make(map[string]string),
		autoLoginOnSignUp: true,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", b.handleLogin)
	mux.HandleFunc("POST /auth/register", b.handleRegister)
	mux.HandleFunc("POST /auth/refresh-token", b.handleRefresh)
	mux.HandleFunc("GET "+MePath, b.protected(b.handleMe))
	mux.HandleFunc("POST "+EchoPath, b.protected(b.handleEcho))

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Server.Close)
	return b
}

// URL, backend'in kök adresi.
func (b *Backend) URL() string {
	return b.Server.URL
}

// AddUser, bir hesap oluşturur ve profilini döner.
func (b *Backend) AddUser(t testing.TB, email, password string, role models.Role) models.UserProfile {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	profile := models.UserProfile{ID: models.UserID(uuid.NewString()), Email: email, Role: role}
	b.mu.Lock()
	b.accounts[strings.ToLower(email)] = &account{profile: profile, passwordHash: hash}
	b.mu.Unlock()
	return profile
}

// ExpireAccessTokens, şu ana kadar verilmiş tüm access token'ları geçersiz kılar.
// Refresh token'lar geçerli kalır.
func (b *Backend) ExpireAccessTokens() {
	b.mu.Lock()
	b.accessTokens = make(map[string]string)
	b.mu.Unlock()
}

// RevokeRefreshTokens, tüm refresh token'ları geçersiz kılar.
func (b *Backend) RevokeRefreshTokens() {
	b.mu.Lock()
	b.refreshTokens = make(map[string]string)
	b.mu.Unlock()
}

// SetRefreshDelay, refresh yanıtını verilen süre kadar geciktirir.
func (b *Backend) SetRefreshDelay(d time.Duration) {
	b.mu.Lock()
	b.refreshDelay = d
	b.mu.Unlock()
}

// FailRefresh, sonraki refresh çağrılarının verilen status ile dönmesini sağlar.
// 0 normal davranışa döner.
func (b *Backend) FailRefresh(status int) {
	b.mu.Lock()
	b.refreshStatus = status
	b.mu.Unlock()
}

// RefreshIncludesUser, refresh yanıtına user eklenip eklenmeyeceğini ayarlar.
func (b *Backend) RefreshIncludesUser(v bool) {
	b.mu.Lock()
	b.refreshWithUser = v
	b.mu.Unlock()
}

// AutoLoginOnRegister, register'ın token döndürüp döndürmeyeceğini ayarlar.
func (b *Backend) AutoLoginOnRegister(v bool) {
	b.mu.Lock()
	b.autoLoginOnSignUp = v
	b.mu.Unlock()
}

// RefreshCalls, refresh endpoint'ine gelen istek sayısı.
func (b *Backend) RefreshCalls() int { return int(b.refreshCalls.Load()) }

// LoginCalls, login endpoint'ine gelen istek sayısı.
func (b *Backend) LoginCalls() int { return int(b.loginCalls.Load()) }

// RegisterCalls, register endpoint'ine gelen istek sayısı.
func (b *Backend) RegisterCalls() int { return int(b.registerCalls.Load()) }

// ProtectedCalls, korumalı kaynaklara gelen istek sayısı (401 dahil).
func (b *Backend) ProtectedCalls() int { return int(b.protectedCalls.Load()) }

// ValidAccessToken, token şu anda korumalı kaynaklarca kabul ediliyorsa true döner.
func (b *Backend) ValidAccessToken(token string) bool {
	_, ok := b.authenticate(token)
	return ok
}

// ValidRefreshToken, refresh token hâlâ kullanılabilirse true döner.
func (b *Backend) ValidRefreshToken(token string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.refreshTokens[token]
	return ok
}

// ─── Handlers ───

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	b.loginCalls.Add(1)

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	b.mu.Lock()
	acc := b.accounts[strings.ToLower(req.Email)]
	b.mu.Unlock()

	if acc == nil || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.Password)) != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	b.writeSession(w, acc.profile, true)
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	b.registerCalls.Add(1)

	var req models.RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if req.Password != req.ConfirmPassword {
		writeMessage(w, http.StatusBadRequest, "Passwords do not match")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	key := strings.ToLower(req.Email)
	b.mu.Lock()
	if _, exists := b.accounts[key]; exists {
		b.mu.Unlock()
		writeMessage(w, http.StatusBadRequest, "Email is already registered")
		return
	}
	acc := &account{
		profile: models.UserProfile{
			ID:        models.UserID(uuid.NewString()),
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Role:      models.RoleUser,
		},
		passwordHash: hash,
	}
	b.accounts[key] = acc
	autoLogin := b.autoLoginOnSignUp
	b.mu.Unlock()

	if !autoLogin {
		writeJSON(w, http.StatusOK, models.AuthResponse{User: &acc.profile})
		return
	}
	b.writeSession(w, acc.profile, true)
}

func (b *Backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	b.refreshCalls.Add(1)

	b.mu.Lock()
	delay, status, withUser := b.refreshDelay, b.refreshStatus, b.refreshWithUser
	b.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if status != 0 {
		writeMessage(w, status, "Refresh rejected")
		return
	}

	var req models.RefreshPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeMessage(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	b.mu.Lock()
	email, ok := b.refreshTokens[req.Token]
	if ok {
		delete(b.refreshTokens, req.Token) // rotasyon: her refresh token tek kullanımlık
	}
	acc := b.accounts[email]
	b.mu.Unlock()

	if !ok || acc == nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	b.writeSession(w, acc.profile, withUser)
}

func (b *Backend) handleMe(w http.ResponseWriter, _ *http.Request, profile models.UserProfile) {
	writeJSON(w, http.StatusOK, profile)
}

func (b *Backend) handleEcho(w http.ResponseWriter, r *http.Request, _ models.UserProfile) {
	w.Header().Set("Content-Type", r.Header.Get("Content-Type"))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, r.Body)
}

// ─── Private Helpers ───

func (b *Backend) protected(next func(http.ResponseWriter, *http.Request, models.UserProfile)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.protectedCalls.Add(1)

		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			writeMessage(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		profile, ok := b.authenticate(token)
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Token expired")
			return
		}
		next(w, r, profile)
	}
}

func (b *Backend) authenticate(token string) (models.UserProfile, bool) {
	claims := &models.TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return b.secret, nil
	})
	if err != nil || !parsed.Valid {
		return models.UserProfile{}, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	email, ok := b.accessTokens[claims.ID]
	if !ok {
		return models.UserProfile{}, false
	}
	acc := b.accounts[email]
	if acc == nil {
		return models.UserProfile{}, false
	}
	return acc.profile, true
}

func (b *Backend) writeSession(w http.ResponseWriter, profile models.UserProfile, withUser bool) {
	access, err := b.issue(profile)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to sign token")
		return
	}

	resp := models.AuthResponse{Token: access, RefreshToken: uuid.NewString()}
	if withUser {
		resp.User = &profile
	}

	b.mu.Lock()
	b.refreshTokens[resp.RefreshToken] = strings.ToLower(profile.Email)
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// issue, 15 dakikalık imzalı bir access token üretir.
func (b *Backend) issue(profile models.UserProfile) (string, error) {
	jti := uuid.NewString()
	now := time.Now()
	claims := models.TokenClaims{
		UserID: string(profile.ID),
		Email:  profile.Email,
		Role:   profile.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   string(profile.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	b.accessTokens[jti] = strings.ToLower(profile.Email)
	b.mu.Unlock()
	return signed, nil
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
