// Package main — Handler katmanı başlatma.
//
// initHandlers, HTTP handler'larını oluşturur. Handler'lar "thin"dir —
// sadece HTTP parse + service call + response write.
package main

import (
	"fmt"
	"net/url"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/config"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/handlers"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg/i18n"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/ws"
)

// Handlers, handler instance'larını tutan container struct.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Session *handlers.SessionHandler
	Views   *handlers.ViewHandler
	Backend *handlers.BackendProxy
	WS      *ws.Handler
}

// initHandlers, handler'ları service ve rate limiter dependency'leri ile oluşturur.
func initHandlers(svcs *Services, limiters *RateLimiters, hub *ws.Hub, cfg *config.Config, localizer *i18n.Localizer) (*Handlers, error) {
	target, err := url.Parse(cfg.Backend.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_URL: %w", err)
	}

	return &Handlers{
		Auth:    handlers.NewAuthHandler(svcs.Session, svcs.Monitor, limiters.Login, localizer),
		Session: handlers.NewSessionHandler(svcs.Session, svcs.Monitor),
		Views:   handlers.NewViewHandler(svcs.Session),
		Backend: handlers.NewBackendProxy(target, svcs.BackendTransport),
		WS:      ws.NewHandler(hub, svcs.Session, svcs.Monitor, cfg.UI.AllowedOrigins),
	}, nil
}
