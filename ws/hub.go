package ws

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
)

// Broadcaster, SessionBridge'in Hub'dan ihtiyaç duyduğu tek şey.
// Testlerde sahte bir implementasyon verilebilir.
type Broadcaster interface {
	Broadcast(event Event)
}

// Hub, tüm sekme bağlantılarını yöneten merkezi yapıdır (Observer pattern).
//
// Portal tek kullanıcılıdır; bağlantılar kullanıcıya değil, sekmeye
// (client ID) göre tutulur. Oturum event'leri her zaman tüm sekmelere gider.
//
// Hub.Run() goroutine'i register/unregister channel'larını `select` ile
// dinler ve clients map'ini günceller.
type Hub struct {
	// clients: clientID → Client
	clients map[string]*Client
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client

	// done kapandığında Run döner; register/unregister gönderimleri bloklamaz.
	done      chan struct{}
	closeOnce sync.Once

	// seq: Her outbound event'e verilen artan sayaç.
	seq atomic.Int64

	// onActivity: sekmeden activity event'i geldiğinde çağrılır.
	// main package'da SessionMonitor'e bağlanır (Dependency Inversion).
	onActivity func(kind string)
}

// NewHub, yeni bir Hub oluşturur. main'de `go hub.Run()` ile başlatılır.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// OnActivity, activity callback'ini ayarlar. Run'dan önce çağrılmalıdır.
func (h *Hub) OnActivity(fn func(kind string)) {
	h.onActivity = fn
}

// Run, Hub'ın ana event loop'udur. Shutdown çağrılınca döner.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case <-h.done:
			return
		}
	}
}

// join, client'ı Hub'a kaydettirir. Hub kapanmışsa false döner.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// leave, client'ı Hub'dan çıkarır. Hub kapanmışsa no-op.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.done:
		// Shutdown ile yarıştı; bağlantıyı hemen kapat.
		close(client.send)
		return
	default:
	}

	h.clients[client.id] = client
	log.Printf("[ws] client connected: %s (total: %d)", client.id, len(h.clients))
}

// removeClient, client'ı çıkarır ve send channel'ını kapatır.
// Sadece map'te olan client'ın channel'ı kapatılır — çift close olmaz.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[client.id]; ok && current == client {
		delete(h.clients, client.id)
		close(client.send)
		log.Printf("[ws] client disconnected: %s (remaining: %d)", client.id, len(h.clients))
	}
}

// Broadcast, tüm bağlı sekmelere event gönderir.
func (h *Hub) Broadcast(event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal broadcast event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.send <- data:
		default:
			// Buffer dolu — bu sekme yavaş, bağlantıyı kapat
			log.Printf("[ws] send buffer full for client %s, dropping connection", client.id)
			go h.leave(client)
		}
	}
}

// sendTo, tek bir client'a event gönderir. Client artık kayıtlı değilse
// (channel kapanmış olabilir) event atılır.
func (h *Hub) sendTo(client *Client, event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal event for client %s: %v", client.id, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.clients[client.id] != client {
		return
	}
	select {
	case client.send <- data:
	default:
		log.Printf("[ws] send buffer full for client %s, dropping connection", client.id)
		go h.leave(client)
	}
}

// ClientCount, bağlı sekme sayısı.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown, tüm bağlantıları kapatır ve Run'ı durdurur (graceful shutdown).
// Birden fazla çağrılabilir.
func (h *Hub) Shutdown() {
	h.closeOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		defer h.mu.Unlock()

		for _, client := range h.clients {
			close(client.send)
		}
		h.clients = make(map[string]*Client)
		log.Println("[ws] hub shut down, all connections closed")
	})
}
