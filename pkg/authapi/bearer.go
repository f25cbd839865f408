package authapi

import (
	"net/http"
	"sync"
)

// BearerHeader, giden isteklere eklenecek access token'ın tek kaynağı.
//
// AuthSession login/refresh sonrası Set, logout sonrası Clear çağırır.
// Token boşken Apply header'ı TAMAMEN siler; "Bearer " gibi boş bir
// değer asla gönderilmez.
type BearerHeader struct {
	mu    sync.RWMutex
	token string
}

// NewBearerHeader, boş (oturumsuz) bir header döner.
func NewBearerHeader() *BearerHeader {
	return &BearerHeader{}
}

// Set, access token'ı değiştirir.
func (b *BearerHeader) Set(token string) {
	b.mu.Lock()
	b.token = token
	b.mu.Unlock()
}

// Clear, token'ı kaldırır.
func (b *BearerHeader) Clear() {
	b.Set("")
}

// Token, şu anki access token'ı döner (yoksa "").
func (b *BearerHeader) Token() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.token
}

// Apply, isteğin Authorization header'ını şu anki token'a göre ayarlar.
func (b *BearerHeader) Apply(req *http.Request) {
	setBearer(req, b.Token())
}

func setBearer(req *http.Request, token string) {
	if token == "" {
		req.Header.Del("Authorization")
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}
