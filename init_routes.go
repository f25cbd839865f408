// Package main — HTTP route registration.
//
// initRoutes, tüm endpoint'leri mux'a bağlar. Middleware chain helper'ları:
//   - guest: sadece oturumsuz (login, signup)
//   - protect: oturum + (varsa) rol kontrolü
package main

import (
	"fmt"
	"net/http"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/middleware"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/models"
)

func initRoutes(mux *http.ServeMux, h *Handlers, session middleware.SessionReader) {
	// ─── Middleware ───
	accessMw := middleware.NewAccessMiddleware(session)

	// ─── Middleware Chain Helpers ───
	guest := func(handler http.HandlerFunc) http.Handler {
		return accessMw.GuestOnly(handler)
	}
	protect := func(handler http.Handler, roles ...models.Role) http.Handler {
		return accessMw.Protect(roles...)(handler)
	}

	// Health check
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","service":"portal"}`)
	})

	// ─── Auth ───
	mux.Handle("POST /api/auth/login", guest(h.Auth.Login))
	mux.Handle("POST /api/auth/register", guest(h.Auth.Register))
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.HandleFunc("GET /api/auth/session", h.Session.Get)

	// ─── Session ───
	mux.Handle("POST /api/session/extend", protect(http.HandlerFunc(h.Session.Extend)))
	mux.Handle("POST /api/session/activity", protect(http.HandlerFunc(h.Session.Activity)))

	// ─── Views ───
	mux.Handle("GET /login", guest(h.Views.Login))
	mux.Handle("GET /signup", guest(h.Views.Signup))
	mux.Handle("GET /dashboard", protect(http.HandlerFunc(h.Views.Dashboard), models.RoleUser, models.RoleAdmin))
	mux.Handle("GET /admin", protect(http.HandlerFunc(h.Views.Admin), models.RoleAdmin))
	mux.HandleFunc("GET /unauthorized", h.Views.Unauthorized)

	// ─── Backend Proxy ───
	// /api/backend/projects → <BACKEND_URL>/projects, oturumun bearer'ı ile
	mux.Handle("/api/backend/", protect(http.StripPrefix("/api/backend", h.Backend)))

	// ─── WebSocket ───
	// Sekmeler oturum event'lerini buradan alır. Origin kontrolü handler'da.
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)
}
