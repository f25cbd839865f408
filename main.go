// Package main, portal sunucusunun giriş noktasıdır.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//  1. Config'i yükle
//  2. i18n çevirilerini yükle
//  3. TokenStore'u başlat (SQLite veya in-memory)
//  4. WebSocket Hub'ı oluştur
//  5. Service'leri oluştur (session, monitor, bridge)
//  6. Callback/observer'ları bağla, Hub'ı başlat
//  7. Oturumu TokenStore'dan yükle (loading barrier kalkar), monitor'ü başlat
//  8. Handler'ları oluştur, route'ları bağla
//  9. CORS yapılandır
//  10. HTTP Server'ı başlat
//  11. Graceful shutdown
//
// Global değişken YOK — her şey burada oluşturulup birbirine bağlanıyor.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/config"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg/i18n"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/ws"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] portal starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (addr=%s, backend=%s)", cfg.Server.Addr(), cfg.Backend.BaseURL)

	// ─── 2. i18n ───
	if err := i18n.LoadEmbedded(); err != nil {
		log.Fatalf("[main] failed to load i18n translations: %v", err)
	}
	localizer := i18n.NewLocalizer(cfg.UI.Language)

	// ─── 3. TokenStore ───
	store, closeStore, err := initTokenStore(cfg.Store)
	if err != nil {
		log.Fatalf("[main] failed to initialize token store: %v", err)
	}
	defer closeStore()

	// ─── 4-6. Hub, Services, Callbacks ───
	hub := ws.NewHub()
	svcs, limiters := initServices(cfg, store, hub, localizer)
	registerCallbacks(hub, svcs)
	go hub.Run()

	// ─── 7. Session ───
	//
	// Initialize tamamlanana kadar AccessGate her isteğe Pending der.
	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	if err := svcs.Session.Initialize(initCtx); err != nil {
		log.Printf("[main] session store reset failed: %v", err)
	}
	cancelInit()
	svcs.Monitor.Start()

	// ─── 8. Handlers + Routes ───
	h, err := initHandlers(svcs, limiters, hub, cfg, localizer)
	if err != nil {
		log.Fatalf("[main] failed to initialize handlers: %v", err)
	}

	mux := http.NewServeMux()
	initRoutes(mux, h, svcs.Session)

	// ─── 9. CORS ───
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.UI.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
	})

	// ─── 10. HTTP Server ───
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      corsHandler.Handler(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Backend.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ─── 11. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// Önce timer'lar: kapanış sırasında logout/refresh tetiklenmesin.
	// Oturum TokenStore'da kalır; sonraki açılışta geri yüklenir.
	svcs.Monitor.Stop()
	limiters.Login.Stop()
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[main] forced shutdown: %v", err)
	}

	log.Println("[main] server stopped gracefully")
}
