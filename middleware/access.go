// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Go'da middleware bir fonksiyondur:
//
//	func(next http.Handler) http.Handler
//
// Middleware kendi işini yapar (ör: yetki kararı), sonra next'i çağırır.
// Karar "izin ver" değilse next ÇAĞIRILMAZ → request burada durur.
package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/handlers"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/models"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/services"
)

// Yönlendirme hedefleri.
const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
	HomePath         = "/dashboard"
)

// SessionReader, middleware'in oturumdan ihtiyaç duyduğu tek şey.
type SessionReader interface {
	Snapshot() models.SessionState
}

// AccessMiddleware, AccessGate kararlarının HTTP adaptörü.
//
// Karar → yanıt eşlemesi:
//   - Pending                → 503 + Retry-After: 1 (oturum henüz yüklenmedi)
//   - RedirectToLogin        → 302 /login?returnTo=<path>
//   - RedirectToUnauthorized → 302 /unauthorized?roles=Admin,...
//   - RedirectToHome         → 302 /dashboard (sadece GuestOnly)
//
// /api/ altındaki path'ler yönlendirme yerine JSON 401/403/409 alır.
type AccessMiddleware struct {
	session SessionReader
}

// NewAccessMiddleware, constructor.
func NewAccessMiddleware(session SessionReader) *AccessMiddleware {
	return &AccessMiddleware{session: session}
}

// Protect, verilen rollerden birini isteyen middleware döner.
// Rol verilmezse sadece oturum açık olması yeterlidir.
func (m *AccessMiddleware) Protect(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := m.session.Snapshot()
			decision := services.Decide(roles, state, r.URL.RequestURI())
			if decision.Outcome != services.OutcomeAllow {
				writeDecision(w, r, decision)
				return
			}

			// Handler'lar user'a context üzerinden erişir
			ctx := context.WithValue(r.Context(), handlers.UserContextKey, state.User)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GuestOnly, sadece oturumsuz kullanıcılara açık route'lar için (login, signup).
func (m *AccessMiddleware) GuestOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := services.GuestOnly(m.session.Snapshot())
		if decision.Outcome != services.OutcomeAllow {
			writeDecision(w, r, decision)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ─── Private Helpers ───

func writeDecision(w http.ResponseWriter, r *http.Request, d services.Decision) {
	api := isAPI(r)

	switch d.Outcome {
	case services.OutcomePending:
		w.Header().Set("Retry-After", "1")
		pkg.ErrorWithMessage(w, http.StatusServiceUnavailable, "session is still loading")

	case services.OutcomeRedirectToLogin:
		if api {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
			return
		}
		http.Redirect(w, r, LoginPath+"?returnTo="+url.QueryEscape(d.ReturnPath), http.StatusFound)

	case services.OutcomeRedirectToUnauthorized:
		if api {
			pkg.ErrorWithMessage(w, http.StatusForbidden, "requires role: "+joinRoles(d.RequiredRoles))
			return
		}
		http.Redirect(w, r, UnauthorizedPath+"?roles="+url.QueryEscape(joinRoles(d.RequiredRoles)), http.StatusFound)

	case services.OutcomeRedirectToHome:
		if api {
			pkg.ErrorWithMessage(w, http.StatusConflict, "already signed in")
			return
		}
		http.Redirect(w, r, HomePath, http.StatusFound)

	default:
		pkg.ErrorWithMessage(w, http.StatusInternalServerError, "unknown access decision")
	}
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func joinRoles(roles []models.Role) string {
	parts := make([]string, len(roles))
	for i, role := range roles {
		parts[i] = string(role)
	}
	return strings.Join(parts, ",")
}
