package ws

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/models"
)

// SessionSource, ready event'i için oturumun anlık görüntüsü.
// services.AuthSession bunu implicit olarak karşılar.
type SessionSource interface {
	Snapshot() models.SessionState
}

// TimerSource, ready event'i için SessionMonitor'ün timer durumu.
type TimerSource interface {
	Timer() (models.SessionTimer, bool)
}

// Handler, WebSocket bağlantı isteklerini işleyen HTTP handler'ı.
type Handler struct {
	hub      *Hub
	session  SessionSource
	timers   TimerSource
	upgrader websocket.Upgrader
}

// NewHandler, yeni bir WebSocket handler oluşturur.
//
// allowedOrigins: CORS ile aynı liste. Sekme portal'ın kendi origin'inden
// veya bu listeden gelmiyorsa upgrade reddedilir — başka bir site
// kullanıcının tarayıcısı üzerinden activity gönderip oturumu canlı tutamaz.
func NewHandler(hub *Hub, session SessionSource, timers TimerSource, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}

	return &Handler{
		hub:     hub,
		session: session,
		timers:  timers,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(r, allowed)
			},
		},
	}
}

// HandleConnection, HTTP bağlantısını WebSocket'e yükseltir ve client'ı
// Hub'a kaydeder.
//
// Flow:
// 1. HTTP → WebSocket upgrade (origin kontrolü upgrader'da)
// 2. Client oluştur, ready event'ini buffer'a koy
// 3. Hub'a kaydet
// 4. WritePump ayrı goroutine'de, ReadPump bu goroutine'de çalışır
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrader yanıtı zaten yazdı (403/400).
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}

	client := newClient(h.hub, conn, uuid.NewString())
	client.queue(Event{Op: OpReady, Data: h.readyData(client.id)})

	if !h.hub.join(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	client.ReadPump() // bağlantı kapanana kadar bloklar
}

func (h *Handler) readyData(clientID string) ReadyData {
	state := h.session.Snapshot()
	data := ReadyData{
		ClientID:      clientID,
		Loading:       state.Loading,
		Authenticated: state.IsAuthenticated(),
		User:          state.User,
	}
	if h.timers != nil {
		if timer, ok := h.timers.Timer(); ok {
			expiresAt := timer.ExpiresAt
			data.ExpiresAt = &expiresAt
			data.WarningShown = timer.WarningShown
		}
	}
	return data
}

// originAllowed, Origin header'ı yoksa (tarayıcı dışı client) veya
// isteğin host'u ile aynıysa ya da izin listesindeyse true döner.
func originAllowed(r *http.Request, allowed map[string]bool) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if allowed[origin] {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}
