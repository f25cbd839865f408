package models

import "time"

// SessionStatus, AuthSession state machine'inin durumu.
type SessionStatus string

const (
	StatusUnauthenticated SessionStatus = "unauthenticated"
	StatusAuthenticating  SessionStatus = "authenticating"
	StatusAuthenticated   SessionStatus = "authenticated"
	StatusRefreshing      SessionStatus = "refreshing"
	// StatusLoggedOut, açık bir logout ile ulaşılan Unauthenticated.
	StatusLoggedOut SessionStatus = "logged_out"
)

// SessionState, AuthSession'ın bellekteki durumunun bir kopyası (snapshot).
//
// Loading, başlangıç barrier'ıdır: true iken TokenStore henüz okunmamıştır
// ve hiçbir yetki kararı verilmemelidir.
type SessionState struct {
	User         *UserProfile  `json:"user"`
	Token        string        `json:"-"`
	RefreshToken string        `json:"-"`
	Loading      bool          `json:"loading"`
	Error        string        `json:"error,omitempty"`
	Status       SessionStatus `json:"status"`
}

// IsAuthenticated, token VE user birlikte varsa true döner.
//
// Sadece token (veya sadece user) varsa oturum açık sayılmaz — bu asimetri
// bozuk bir user kaydı yüzünden yarım yüklenen durumu korur.
func (s SessionState) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// HasRole, user varsa ve rolü verilen rollerden biriyse true döner.
// User yoksa roller ne olursa olsun false döner.
//
// Menü/buton görünürlüğü ve AccessGate aynı fonksiyonu kullanır —
// ayrı, birbirinden sapabilecek bir kontrol yoktur.
func (s SessionState) HasRole(roles ...Role) bool {
	if s.User == nil {
		return false
	}
	for _, r := range roles {
		if s.User.Role == r {
			return true
		}
	}
	return false
}

// SessionTimer, SessionMonitor'ün sahip olduğu zamanlayıcı durumu.
type SessionTimer struct {
	ExpiresAt    time.Time `json:"expires_at"`
	WarningShown bool      `json:"warning_shown"`
}

// Remaining, verilen ana göre kalan süreyi döner (negatif olabilir).
func (t SessionTimer) Remaining(now time.Time) time.Duration {
	return t.ExpiresAt.Sub(now)
}
