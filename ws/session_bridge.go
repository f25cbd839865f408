package ws

import (
	"log"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/models"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg/i18n"
)

// SessionBridge, oturum olaylarını sekmelere giden event'lere çevirir.
//
// İki rolü vardır:
//   - services.SessionNotifier: monitor'ün uyarı göster/kaldır çağrıları
//   - services.SessionObserver (OnSessionChange): AuthSession geçişleri
//
// Logout ve süre dolması SADECE AuthSession geçişlerinden türetilir:
// LoggedOut + hata mesajı → session_expired, mesajsız → session_logout.
// Böylece aynı logout için iki event gitmez.
type SessionBridge struct {
	hub       Broadcaster
	localizer *i18n.Localizer

	mu        sync.Mutex
	lastToken string // son görülen access token; "" → oturum yok
}

// NewSessionBridge, constructor. localizer nil ise event'lerde mesaj olmaz.
func NewSessionBridge(hub Broadcaster, localizer *i18n.Localizer) *SessionBridge {
	return &SessionBridge{hub: hub, localizer: localizer}
}

// WarningShown, uyarı eşiğine ulaşıldığında monitor tarafından çağrılır.
func (b *SessionBridge) WarningShown(remaining time.Duration) {
	seconds := int(math.Ceil(remaining.Seconds()))
	b.hub.Broadcast(Event{
		Op: OpSessionWarning,
		Data: SessionWarningData{
			RemainingSeconds: seconds,
			Message:          b.text("session.warning", map[string]string{"seconds": strconv.Itoa(seconds)}),
		},
	})
}

// WarningCleared, uyarı aktivite veya refresh ile kalktığında çağrılır.
func (b *SessionBridge) WarningCleared() {
	b.hub.Broadcast(Event{Op: OpSessionWarningCleared})
}

// OnSessionChange, AuthSession observer'ı.
func (b *SessionBridge) OnSessionChange(state models.SessionState) {
	b.mu.Lock()
	prev := b.lastToken
	if state.IsAuthenticated() {
		b.lastToken = state.Token
	} else {
		b.lastToken = ""
	}
	b.mu.Unlock()

	switch {
	case state.IsAuthenticated() && prev == "":
		b.hub.Broadcast(Event{Op: OpSessionStarted, Data: SessionStartedData{User: state.User}})

	case state.IsAuthenticated() && prev != state.Token:
		b.hub.Broadcast(Event{Op: OpSessionRefreshed, Data: SessionRefreshedData{
			Message: b.text("session.refreshed", nil),
		}})

	case !state.IsAuthenticated() && prev != "" && state.Status == models.StatusLoggedOut:
		if state.Error != "" {
			log.Printf("[ws] session expired, notifying tabs")
			b.hub.Broadcast(Event{Op: OpSessionExpired, Data: SessionEndedData{Message: state.Error}})
			return
		}
		b.hub.Broadcast(Event{Op: OpSessionLogout, Data: SessionEndedData{}})
	}
}

func (b *SessionBridge) text(key string, params map[string]string) string {
	if b.localizer == nil {
		return ""
	}
	return b.localizer.TWithParams(key, params)
}
