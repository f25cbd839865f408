// Package main — Service katmanı başlatma.
//
// initServices, oturum çekirdeğini oluşturur. Sıralama:
// 1. BearerHeader + AuthClient (stateless)
// 2. AuthSession (TokenStore'un tek yazarı)
// 3. SessionBridge (ws) → SessionMonitor'ün notifier'ı
// 4. SessionMonitor
// 5. Backend HTTP client (RetryTransport, refresher = AuthSession)
package main

import (
	"net/http"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/config"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg/authapi"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg/i18n"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg/ratelimit"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/repository"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/services"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/ws"
)

// Services, service instance'larını tutan container struct.
type Services struct {
	Session services.AuthSession
	Monitor services.SessionMonitor
	Bridge  *ws.SessionBridge
	Header  *authapi.BearerHeader
	// BackendTransport, backend'e giden oturumlu istekler için
	// refresh-on-401 transport'u (proxy kullanır).
	BackendTransport http.RoundTripper
}

// RateLimiters, rate limiter instance'larını tutan container.
type RateLimiters struct {
	Login *ratelimit.LoginRateLimiter
}

// initServices, service'leri ve rate limiter'ları oluşturur.
// Monitor burada başlatılmaz; main, session.Initialize'dan sonra Start eder.
func initServices(cfg *config.Config, store repository.TokenStore, hub ws.Broadcaster, localizer *i18n.Localizer) (*Services, *RateLimiters) {
	header := authapi.NewBearerHeader()
	client := authapi.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)

	session := services.NewAuthSession(store, client, header, localizer)
	bridge := ws.NewSessionBridge(hub, localizer)

	monitor := services.NewSessionMonitor(services.MonitorConfig{
		SessionLifetime:  cfg.Session.Lifetime,
		RefreshAhead:     cfg.Session.RefreshAhead,
		WarningThreshold: cfg.Session.WarningThreshold,
		TickInterval:     cfg.Session.TickInterval,
		TrustTokenExpiry: cfg.Session.TrustTokenExpiry,
	}, nil, session, bridge)

	svcs := &Services{
		Session:          session,
		Monitor:          monitor,
		Bridge:           bridge,
		Header:           header,
		BackendTransport: authapi.NewRetryTransport(nil, header, session),
	}

	limiters := &RateLimiters{
		Login: ratelimit.NewLoginRateLimiter(cfg.UI.LoginMaxAttempts, cfg.UI.LoginWindow, nil),
	}

	return svcs, limiters
}
