// Package ws, açık tarayıcı sekmelerine oturum event'lerini iten ve
// sekmelerden kullanıcı aktivitesi alan WebSocket katmanıdır.
//
// Mimari:
// - Hub: Tüm sekme bağlantılarını yöneten merkezi yapı (Observer pattern)
// - Client: Her WebSocket bağlantısını (bir sekme) temsil eder
// - SessionBridge: AuthSession/SessionMonitor olaylarını Event'lere çevirir
//
// Event akışı:
// 1. SessionMonitor uyarı eşiğine ulaşır → SessionBridge.WarningShown
// 2. Bridge, Hub.Broadcast ile session_warning event'ini yayar
// 3. Her client'ın WritePump'ı event'i WebSocket'e yazar
// 4. Sekme "oturumunuz bitmek üzere" uyarısını gösterir
// 5. Kullanıcı etkileşimi → sekme activity event'i gönderir → monitor
package ws

import (
	"time"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/models"
)

// Event, WebSocket üzerinden iletilen bir mesajı temsil eder.
//
// Op (operation): Event türü — "session_warning", "heartbeat" vb.
// Data: Event'e özgü payload.
// Seq: Her outbound event'e verilen artan sayı; sekme kaçırdığı event'i
// fark edip GET /api/auth/session ile durumu yeniden okuyabilir.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// ────────────────────────────────────────────
// Operation sabitleri
// ────────────────────────────────────────────

// Client → Server operasyonları
const (
	OpHeartbeat = "heartbeat" // Sekme her 30sn'de gönderir — "hâlâ bağlıyım" sinyali
	OpActivity  = "activity"  // Kullanıcı etkileşimi (pointer_down, key_down, touch_start, scroll)
)

// Server → Client operasyonları
const (
	OpReady                 = "ready"                   // Bağlantı kurulduğunda ilk gönderilen — oturum özeti
	OpHeartbeatAck          = "heartbeat_ack"           // Heartbeat'e yanıt
	OpSessionStarted        = "session_started"         // Login/register ile oturum açıldı
	OpSessionWarning        = "session_warning"         // Oturum bitmek üzere
	OpSessionWarningCleared = "session_warning_cleared" // Uyarı kalktı (aktivite veya refresh)
	OpSessionRefreshed      = "session_refreshed"       // Token çifti yenilendi
	OpSessionExpired        = "session_expired"         // Süre doldu veya refresh başarısız — zorunlu logout
	OpSessionLogout         = "session_logout"          // Kullanıcı çıkış yaptı
)

// ────────────────────────────────────────────
// Payload tipleri
// ────────────────────────────────────────────

// ReadyData, ready event'inin payload'ı.
type ReadyData struct {
	ClientID      string              `json:"client_id"`
	Loading       bool                `json:"loading"`
	Authenticated bool                `json:"authenticated"`
	User          *models.UserProfile `json:"user,omitempty"`
	ExpiresAt     *time.Time          `json:"expires_at,omitempty"`
	WarningShown  bool                `json:"warning_shown"`
}

// ActivityData, activity event'inin payload'ı.
type ActivityData struct {
	Kind string `json:"kind"`
}

// SessionWarningData, session_warning payload'ı.
type SessionWarningData struct {
	RemainingSeconds int    `json:"remaining_seconds"`
	Message          string `json:"message,omitempty"`
}

// SessionStartedData, session_started payload'ı.
type SessionStartedData struct {
	User *models.UserProfile `json:"user"`
}

// SessionRefreshedData, session_refreshed payload'ı.
type SessionRefreshedData struct {
	Message string `json:"message,omitempty"`
}

// SessionEndedData, session_expired ve session_logout payload'ı.
type SessionEndedData struct {
	Message string `json:"message,omitempty"`
}
