package services

import (
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/models"
)

// Outcome, AccessGate kararının türü.
type Outcome string

const (
	OutcomePending                Outcome = "pending"
	OutcomeAllow                  Outcome = "allow"
	OutcomeRedirectToLogin        Outcome = "redirect_login"
	OutcomeRedirectToUnauthorized Outcome = "redirect_unauthorized"
	OutcomeRedirectToHome         Outcome = "redirect_home" // sadece GuestOnly
)

// Decision, bir route için yetki kararı.
//
// ReturnPath sadece RedirectToLogin'de, RequiredRoles sadece
// RedirectToUnauthorized'da doludur.
type Decision struct {
	Outcome       Outcome       `json:"outcome"`
	ReturnPath    string        `json:"returnPath,omitempty"`
	RequiredRoles []models.Role `json:"requiredRoles,omitempty"`
}

// Decide, korumalı bir route'a erişim kararını verir.
//
// Kurallar sırayla uygulanır:
//  1. Oturum hâlâ yükleniyorsa → Pending (karar verilmez)
//  2. Oturum açık değilse → RedirectToLogin(requestedPath)
//  3. Rol listesi boş değilse ve user'ın rolü listede yoksa → RedirectToUnauthorized
//  4. Aksi halde → Allow
func Decide(required []models.Role, state models.SessionState, requestedPath string) Decision {
	if state.Loading {
		return Decision{Outcome: OutcomePending}
	}
	if !state.IsAuthenticated() {
		return Decision{Outcome: OutcomeRedirectToLogin, ReturnPath: requestedPath}
	}
	if len(required) > 0 && !state.HasRole(required...) {
		roles := make([]models.Role, len(required))
		copy(roles, required)
		return Decision{Outcome: OutcomeRedirectToUnauthorized, RequiredRoles: roles}
	}
	return Decision{Outcome: OutcomeAllow}
}

// GuestOnly, login/signup gibi sadece oturumsuz kullanıcılara açık
// sayfaların kararı. Oturum açıksa ana sayfaya yönlendirilir.
func GuestOnly(state models.SessionState) Decision {
	if state.Loading {
		return Decision{Outcome: OutcomePending}
	}
	if state.IsAuthenticated() {
		return Decision{Outcome: OutcomeRedirectToHome}
	}
	return Decision{Outcome: OutcomeAllow}
}

// CanRender, menü/buton görünürlüğü için. Route koruması ile aynı
// HasRole kontrolünü kullanır.
func CanRender(state models.SessionState, roles ...models.Role) bool {
	return state.HasRole(roles...)
}
