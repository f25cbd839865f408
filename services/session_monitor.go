package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/models"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg"
)

// ActivityKind, oturumu canlı tutan kullanıcı etkileşimi türü.
type ActivityKind string

const (
	ActivityPointerDown ActivityKind = "pointer_down"
	ActivityKeyDown     ActivityKind = "key_down"
	ActivityTouchStart  ActivityKind = "touch_start"
	ActivityScroll      ActivityKind = "scroll"
)

// ParseActivityKind, dışarıdan (ws, HTTP) gelen değeri doğrular.
func ParseActivityKind(s string) (ActivityKind, error) {
	switch k := ActivityKind(s); k {
	case ActivityPointerDown, ActivityKeyDown, ActivityTouchStart, ActivityScroll:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown activity kind %q", pkg.ErrBadRequest, s)
}

// MonitorConfig, SessionMonitor zamanlama ayarları.
type MonitorConfig struct {
	SessionLifetime  time.Duration // exp ipucu yoksa deadline = arm anı + lifetime
	RefreshAhead     time.Duration // kalan süre bunun altına inince refresh denenir
	WarningThreshold time.Duration // kalan süre bunun altına inince uyarı gösterilir
	TickInterval     time.Duration
	TrustTokenExpiry bool // access token'ın exp claim'i (doğrulanmadan) deadline olarak kullanılsın mı
}

// SessionController, monitor'ün oturum üzerinde yapabildikleri.
// AuthSession bunu implemente eder.
type SessionController interface {
	Snapshot() models.SessionState
	RefreshToken(ctx context.Context) (string, error)
	Expire(ctx context.Context) error
}

// SessionNotifier, uyarı sinyallerinin gittiği yer (ws hub adapter'ı).
type SessionNotifier interface {
	WarningShown(remaining time.Duration)
	WarningCleared()
}

// SessionMonitor, boşta kalan oturumları izler.
//
// Login/refresh ile kurulur (deadline timer + periyodik tick), logout ile
// TAMAMEN sökülür. Tüm kararlar tetiklenme anındaki oturum durumuna göre
// verilir; kurulum anındaki bir kopyaya göre değil.
type SessionMonitor interface {
	Start()
	Stop()
	// OnSessionChange, AuthSession observer'ı olarak bağlanır.
	OnSessionChange(state models.SessionState)
	Activity(kind ActivityKind)
	Timer() (models.SessionTimer, bool)
}

// watch, bir kurulumun (arm) sahip olduğu kaynaklar.
type watch struct {
	stop     chan struct{}
	ticker   *clock.Ticker
	deadline *clock.Timer
}

type sessionMonitor struct {
	cfg      MonitorConfig
	clock    clock.Clock
	session  SessionController
	notifier SessionNotifier

	mu               sync.Mutex
	started          bool
	armed            bool
	token            string // timer'ın kurulduğu access token
	timer            models.SessionTimer
	watch            *watch
	refreshing       bool
	refreshAttempted bool          // bu deadline için tick kaynaklı refresh denendi mi
	refreshAhead     time.Duration // bu kurulumun refresh penceresi (bkz. refreshWindow)

	wg sync.WaitGroup
}

// NewSessionMonitor, constructor. clk nil ise gerçek saat kullanılır.
func NewSessionMonitor(cfg MonitorConfig, clk clock.Clock, session SessionController, notifier SessionNotifier) SessionMonitor {
	if clk == nil {
		clk = clock.New()
	}
	return &sessionMonitor{
		cfg:      cfg,
		clock:    clk,
		session:  session,
		notifier: notifier,
	}
}

// Start, monitor'ü başlatır; oturum zaten açıksa hemen kurar.
func (m *sessionMonitor) Start() {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()

	m.OnSessionChange(m.session.Snapshot())
}

// Stop, tüm timer'ları söker ve çalışan goroutine'lerin bitmesini bekler.
func (m *sessionMonitor) Stop() {
	m.mu.Lock()
	m.started = false
	m.disarmLocked()
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *sessionMonitor) OnSessionChange(state models.SessionState) {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}

	if !state.IsAuthenticated() {
		if m.armed {
			log.Printf("[monitor] session closed, timers disarmed")
		}
		m.disarmLocked()
		m.mu.Unlock()
		return
	}

	if m.armed && state.Token == m.token {
		m.mu.Unlock()
		return
	}

	hadWarning := m.armed && m.timer.WarningShown
	m.armLocked(state.Token)
	expiresAt := m.timer.ExpiresAt
	m.mu.Unlock()

	log.Printf("[monitor] armed, session expires at %s", expiresAt.Format(time.RFC3339))
	if hadWarning {
		m.notifier.WarningCleared()
	}
}

// Activity, kullanıcı etkileşimini işler: refresh-ahead eşiğinin altındaysa
// (ve refresh sürmüyorsa) refresh başlatır, değilse gösterilen uyarıyı kaldırır.
func (m *sessionMonitor) Activity(kind ActivityKind) {
	m.mu.Lock()
	if !m.armed {
		m.mu.Unlock()
		return
	}

	remaining := m.timer.Remaining(m.clock.Now())
	if remaining <= 0 {
		m.mu.Unlock()
		return
	}

	if remaining <= m.refreshAhead {
		if !m.refreshing {
			log.Printf("[monitor] %s activity with %s remaining, refreshing", kind, remaining.Round(time.Second))
			m.startRefreshLocked()
		}
		m.mu.Unlock()
		return
	}

	cleared := m.timer.WarningShown
	m.timer.WarningShown = false
	m.mu.Unlock()

	if cleared {
		m.notifier.WarningCleared()
	}
}

func (m *sessionMonitor) Timer() (models.SessionTimer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timer, m.armed
}

// ─── Private Helpers ───

func (m *sessionMonitor) armLocked(token string) {
	m.disarmLocked()

	now := m.clock.Now()
	expiresAt := m.expiryFor(token, now)

	m.armed = true
	m.token = token
	m.timer = models.SessionTimer{ExpiresAt: expiresAt}
	m.refreshAttempted = false
	m.refreshAhead = m.refreshWindow(expiresAt.Sub(now))

	w := &watch{
		stop:     make(chan struct{}),
		ticker:   m.clock.Ticker(m.cfg.TickInterval),
		deadline: m.clock.Timer(expiresAt.Sub(now)),
	}
	m.watch = w

	m.wg.Add(1)
	go m.loop(w)
}

// disarmLocked, mevcut kurulumu söker. Loop'un bitmesini BEKLEMEZ:
// loop'un kendisinden (evaluate → Expire → OnSessionChange) çağrılabilir.
func (m *sessionMonitor) disarmLocked() {
	if m.watch != nil {
		close(m.watch.stop)
		m.watch = nil
	}
	m.armed = false
	m.token = ""
	m.timer = models.SessionTimer{}
}

func (m *sessionMonitor) loop(w *watch) {
	defer m.wg.Done()
	defer w.ticker.Stop()
	defer w.deadline.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-w.ticker.C:
			m.evaluate()
		case <-w.deadline.C:
			m.evaluate()
		}
	}
}

// evaluate, tick ve deadline'da çalışır. Oturum durumu burada, tetiklenme
// anında okunur.
func (m *sessionMonitor) evaluate() {
	m.mu.Lock()
	if !m.armed {
		m.mu.Unlock()
		return
	}

	state := m.session.Snapshot()
	if !state.IsAuthenticated() {
		m.disarmLocked()
		m.mu.Unlock()
		return
	}

	remaining := m.timer.Remaining(m.clock.Now())

	if remaining <= 0 {
		m.disarmLocked()
		m.mu.Unlock()

		log.Printf("[monitor] session deadline reached, signing out")
		if err := m.session.Expire(context.Background()); err != nil {
			log.Printf("[monitor] sign-out after deadline: %v", err)
		}
		return
	}

	showWarning := false
	if remaining <= m.cfg.WarningThreshold && !m.timer.WarningShown {
		m.timer.WarningShown = true
		showWarning = true
	}

	if remaining <= m.refreshAhead && !m.refreshAttempted && !m.refreshing {
		m.refreshAttempted = true
		m.startRefreshLocked()
	}
	m.mu.Unlock()

	if showWarning {
		log.Printf("[monitor] session expires in %s, warning shown", remaining.Round(time.Second))
		m.notifier.WarningShown(remaining)
	}
}

// startRefreshLocked, refresh'i arka planda başlatır. Başarıda AuthSession
// observer'ları üzerinden OnSessionChange gelir ve monitor yeniden kurulur;
// başarısızlıkta AuthSession oturumu kendisi kapatır.
func (m *sessionMonitor) startRefreshLocked() {
	m.refreshing = true
	m.wg.Add(1)

	go func() {
		defer m.wg.Done()

		_, err := m.session.RefreshToken(context.Background())

		m.mu.Lock()
		m.refreshing = false
		m.mu.Unlock()

		if err != nil {
			log.Printf("[monitor] background refresh failed: %v", err)
		}
	}()
}

// expiryFor, deadline'ı hesaplar.
//
// TrustTokenExpiry açıksa ve token'ın exp claim'i gelecekteyse o kullanılır.
// Token DOĞRULANMAZ — bu sadece zamanlama ipucudur, yetki kararı değildir.
func (m *sessionMonitor) expiryFor(token string, now time.Time) time.Time {
	fallback := now.Add(m.cfg.SessionLifetime)
	if !m.cfg.TrustTokenExpiry {
		return fallback
	}

	claims := &models.TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fallback
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(now) {
		return fallback
	}
	return claims.ExpiresAt.Time
}

// refreshWindow, kurulumun refresh-ahead penceresini verir: en fazla ömrün
// yarısı. exp ipucu RefreshAhead'den kısa bir ömür verdiğinde her yeni
// deadline pencerenin içinde doğar ve her tick yeni bir refresh başlatırdı.
func (m *sessionMonitor) refreshWindow(lifetime time.Duration) time.Duration {
	return min(m.cfg.RefreshAhead, lifetime/2)
}
