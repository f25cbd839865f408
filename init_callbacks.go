// Package main — Callback ve observer wire-up.
//
// registerCallbacks, paketler arasındaki olay akışını bağlar:
//   - AuthSession geçişleri → SessionMonitor (arm/disarm) ve SessionBridge (sekmelere event)
//   - Sekmeden gelen activity → SessionMonitor.Activity
//
// Bu bağlar neden burada? ws paketi services'e, services paketi ws'e
// bağımlı değildir; main package tüm katmanları birbirine bağlayan tek yerdir.
package main

import (
	"log"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/services"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/ws"
)

func registerCallbacks(hub *ws.Hub, svcs *Services) {
	// ─── Session Observer'ları ───

	// Monitor önce: re-arm sırasında gösterilen uyarı temizlenir, sonra
	// bridge session_refreshed event'ini yayar.
	svcs.Session.Subscribe(svcs.Monitor.OnSessionChange)
	svcs.Session.Subscribe(svcs.Bridge.OnSessionChange)

	// ─── Activity Callback ───

	hub.OnActivity(func(kind string) {
		k, err := services.ParseActivityKind(kind)
		if err != nil {
			log.Printf("[ws] ignoring activity: %v", err)
			return
		}
		svcs.Monitor.Activity(k)
	})
}
