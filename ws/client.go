package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket bağlantı sabitleri
const (
	// writeWait: Bir mesajı yazmak için maksimum bekleme süresi.
	writeWait = 10 * time.Second

	// pongWait: Sekmenin heartbeat göndermesi için beklenen maksimum süre.
	// 3 heartbeat kaçırma = 30s × 3 = 90s.
	pongWait = 90 * time.Second

	// maxMessageSize: Sekmenin gönderebileceği maksimum mesaj boyutu (byte).
	// Sadece heartbeat ve activity gelir; ikisi de küçüktür.
	maxMessageSize = 1024

	// sendBufferSize: Her client'ın send channel'ının buffer boyutu.
	sendBufferSize = 32
)

// Client, tek bir sekmenin WebSocket bağlantısını temsil eder.
//
// Her bağlantı için iki goroutine çalışır:
// - ReadPump: sekmeden gelen mesajları okur (heartbeat, activity)
// - WritePump: Hub'dan gelen event'leri sekmeye yazar
//
// gorilla/websocket aynı anda sadece bir okuyucu ve bir yazıcı destekler;
// iki goroutine bu kuralı doğal olarak sağlar.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	id   string
	send chan []byte
	mu   sync.Mutex // conn.WriteMessage çağrılarını korur
}

func newClient(hub *Hub, conn *websocket.Conn, id string) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		id:   id,
		send: make(chan []byte, sendBufferSize),
	}
}

// ID, client'ın kimliği (uuid).
func (c *Client) ID() string {
	return c.id
}

// ReadPump, bağlantı kapanana kadar sekmeden gelen mesajları okur.
// Bağlantı kapandığında Hub'dan çıkar ve kaynakları temizler.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	// Her heartbeat geldiğinde deadline yenilenir.
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("[ws] failed to set read deadline for client %s: %v", c.id, err)
		return
	}

	for {
		_, rawMessage, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] unexpected close for client %s: %v", c.id, err)
			}
			return
		}

		var event Event
		if err := json.Unmarshal(rawMessage, &event); err != nil {
			log.Printf("[ws] invalid message from client %s: %v", c.id, err)
			continue
		}

		c.handleEvent(event)
	}
}

// handleEvent, sekmeden gelen event'leri türüne göre işler.
func (c *Client) handleEvent(event Event) {
	switch event.Op {
	case OpHeartbeat:
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("[ws] failed to set read deadline for client %s: %v", c.id, err)
			return
		}
		c.hub.sendTo(c, Event{Op: OpHeartbeatAck})

	case OpActivity:
		c.handleActivity(event)

	default:
		log.Printf("[ws] unknown op from client %s: %s", c.id, event.Op)
	}
}

// handleActivity, { op: "activity", d: { kind: "key_down" } } mesajını
// Hub'ın activity callback'ine iletir. Tür doğrulaması callback'tedir.
func (c *Client) handleActivity(event Event) {
	// event.Data tipi `any` — JSON'a çevirip tekrar parse etmek en güvenli yol.
	dataBytes, err := json.Marshal(event.Data)
	if err != nil {
		return
	}

	var data ActivityData
	if err := json.Unmarshal(dataBytes, &data); err != nil || data.Kind == "" {
		log.Printf("[ws] activity without kind from client %s", c.id)
		return
	}

	if c.hub.onActivity != nil {
		c.hub.onActivity(data.Kind)
	}
}

// queue, client henüz Hub'a kaydolmadan (ready gibi) event'i buffer'a koyar.
// Sadece kayıttan önce çağrılır; o anda send channel'ı kesin açıktır.
func (c *Client) queue(event Event) {
	event.Seq = c.hub.seq.Add(1)
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal event for client %s: %v", c.id, err)
		return
	}
	c.send <- data
}

// WritePump, Hub'dan gelen event'leri WebSocket bağlantısına yazar.
// send channel kapanınca close frame gönderip çıkar.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		message, ok := <-c.send
		if !ok {
			c.writeMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		}

		if err := c.writeMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// writeMessage, WebSocket'e mesaj yazar (mutex ile korunur).
func (c *Client) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
