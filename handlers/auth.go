// Package handlers, portal'ın HTTP request/response katmanıdır.
//
// Handler'lar "ince" (thin) kalır:
// 1. Request body'yi parse et (JSON → struct)
// 2. AuthSession / SessionMonitor'ü çağır
// 3. Sonucu pkg.JSON / pkg.Error ile döndür
//
// Oturumla ilgili bütün karar ve durum services katmanındadır; handler
// sadece köprüdür.
package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/models"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg/i18n"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg/ratelimit"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/services"
)

// AuthHandler, login/register/logout endpoint'lerini yöneten struct.
type AuthHandler struct {
	session      services.AuthSession
	monitor      services.SessionMonitor
	loginLimiter *ratelimit.LoginRateLimiter
	localizer    *i18n.Localizer
}

// NewAuthHandler, constructor.
// loginLimiter nil ise rate limiting devre dışı kalır; monitor nil ise
// yanıtlarda timer bilgisi olmaz.
func NewAuthHandler(
	session services.AuthSession,
	monitor services.SessionMonitor,
	loginLimiter *ratelimit.LoginRateLimiter,
	localizer *i18n.Localizer,
) *AuthHandler {
	return &AuthHandler{
		session:      session,
		monitor:      monitor,
		loginLimiter: loginLimiter,
		localizer:    localizer,
	}
}

// Login godoc
// POST /api/auth/login
//
// IP bazlı deneme sınırı aşılırsa istek backend'e hiç gitmez: 429 +
// Retry-After. Başarılı login sayacı sıfırlar.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ip := ratelimit.ExtractIP(r)
	if h.loginLimiter != nil && !h.loginLimiter.Allow(ip) {
		// Pencere tam bu anda bitmiş olabilir; istemci yine de en az 1 sn beklemeli.
		wait := max(h.loginLimiter.RetryAfter(ip), time.Second)
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
			h.localizer.TWithParams("auth.tooManyAttempts", map[string]string{"wait": wait.String()}))
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.session.Login(r.Context(), req); err != nil {
		h.fail(w, err)
		return
	}

	if h.loginLimiter != nil {
		h.loginLimiter.Reset(ip)
	}

	pkg.JSON(w, http.StatusOK, newSessionView(h.session.Snapshot(), h.monitor))
}

// Register godoc
// POST /api/auth/register
//
// Backend token döndürmezse 201 + authenticated=false: kullanıcı ayrıca
// login olmalıdır.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.session.Register(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, RegisterView{
		User:          result.User,
		Authenticated: result.Authenticated,
		Session:       newSessionView(h.session.Snapshot(), h.monitor),
	})
}

// Logout godoc
// POST /api/auth/logout
//
// Oturum yoksa da 200 döner — logout idempotent'tir.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Logout(r.Context()); err != nil {
		// Bellek durumu zaten temizlendi; sadece kalıcı silme başarısız.
		pkg.Error(w, fmt.Errorf("%w: %v", pkg.ErrInternal, err))
		return
	}

	pkg.JSON(w, http.StatusOK, newSessionView(h.session.Snapshot(), h.monitor))
}

// fail, session'ın kullanıcıya yönelik (çevrilmiş) hata mesajını error'un
// sınıfına uygun status ile döner.
func (h *AuthHandler) fail(w http.ResponseWriter, err error) {
	pkg.ErrorMessage(w, err, h.session.Snapshot().Error)
}

// ─── Context ───

// contextKey, context'te değer taşımak için kullanılan key tipi.
// Kendi tipimizi kullanmak başka paketlerin key'leriyle çakışmayı önler.
type contextKey string

// UserContextKey, AccessMiddleware'in izin verdiği isteklerde oturumdaki
// *models.UserProfile'ı taşır.
const UserContextKey contextKey = "user"

// CurrentUser, context'teki kullanıcıyı döner; yoksa nil.
func CurrentUser(r *http.Request) *models.UserProfile {
	user, _ := r.Context().Value(UserContextKey).(*models.UserProfile)
	return user
}
