// Package ratelimit — LoginRateLimiter: portal'ın login endpoint'ine karşı
// IP bazlı deneme sınırlaması.
//
// Tasarım:
// - Her IP adresi için sabit pencere ile deneme sayısı takip edilir.
// - Pencere içinde maxAttempts aşılırsa istek backend'e HİÇ gönderilmez.
// - Başarılı login sonrası Reset() ile sayaç sıfırlanır.
// - Background goroutine ile süresi dolmuş bucket'lar temizlenir.
//
// pkg/ratelimit hiçbir proje içi pakete bağımlı değildir (leaf dependency).
package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// bucket, bir IP adresi için deneme sayacı ve pencere başlangıcı.
type bucket struct {
	count       int
	windowStart time.Time
}

// LoginRateLimiter, IP bazlı login rate limiting.
//
// Kullanım:
//
//	limiter := NewLoginRateLimiter(5, 2*time.Minute, nil)
//	defer limiter.Stop()
//	if !limiter.Allow(ip) { return 429 }
//	// Başarılı login'de:
//	limiter.Reset(ip)
type LoginRateLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	maxAttempts int
	window      time.Duration
	clock       clock.Clock
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewLoginRateLimiter, yeni rate limiter oluşturur ve temizleme goroutine'ini
// başlatır. clk nil ise gerçek saat kullanılır.
func NewLoginRateLimiter(maxAttempts int, window time.Duration, clk clock.Clock) *LoginRateLimiter {
	if clk == nil {
		clk = clock.New()
	}
	rl := &LoginRateLimiter{
		buckets:     make(map[string]*bucket),
		maxAttempts: maxAttempts,
		window:      window,
		clock:       clk,
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanupLoop()
	return rl
}

// Allow, IP'nin bir deneme daha yapıp yapamayacağını döner.
// Her çağrı sayacı artırır; başarılı login'de caller Reset() çağırmalıdır.
func (rl *LoginRateLimiter) Allow(ip string) bool {
	now := rl.clock.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[ip]
	if !exists || now.Sub(b.windowStart) > rl.window {
		rl.buckets[ip] = &bucket{count: 1, windowStart: now}
		return true
	}

	b.count++
	return b.count <= rl.maxAttempts
}

// Reset, IP sayacını sıfırlar.
func (rl *LoginRateLimiter) Reset(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, ip)
}

// RetryAfter, pencerenin bitmesine kalan süreyi tam saniyeye yukarı
// yuvarlayarak döner. Retry-After header'ı ve kullanıcı mesajı için.
func (rl *LoginRateLimiter) RetryAfter(ip string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[ip]
	if !exists {
		return 0
	}

	remaining := rl.window - rl.clock.Since(b.windowStart)
	if remaining <= 0 {
		return 0
	}
	return time.Duration(math.Ceil(remaining.Seconds())) * time.Second
}

// Stop, temizleme goroutine'ini durdurur. Birden fazla çağrılabilir.
func (rl *LoginRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

func (rl *LoginRateLimiter) cleanupLoop() {
	ticker := rl.clock.Ticker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *LoginRateLimiter) cleanup() {
	now := rl.clock.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, b := range rl.buckets {
		if now.Sub(b.windowStart) > rl.window {
			delete(rl.buckets, ip)
		}
	}
}

// ExtractIP, HTTP request'ten client IP adresini çıkarır.
//
// Öncelik sırası: X-Forwarded-For (ilk değer), X-Real-IP, RemoteAddr.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
