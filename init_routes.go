// Package main, HTTP route registration.
//
// initRoutes, tüm API endpoint'lerini mux'a bağlar.
// auth helper'ı identity provider token'ını zorunlu kılar.
package main

import (
	"net/http"

	"github.com/akinalp/wordless/middleware"
)

// initRoutes, middleware chain'i kurar ve tüm endpoint'leri mux'a bağlar.
func initRoutes(mux *http.ServeMux, h *Handlers, authenticator middleware.Authenticator) {
	authMw := middleware.NewAuthMiddleware(authenticator)

	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(handler)
	}

	// Health (public)
	mux.HandleFunc("GET /api/health", h.Health.Health)

	// Emotes: sadece okuma; gönderme/tepki/silme WebSocket action'larıdır
	mux.Handle("GET /api/emotes", auth(h.Emote.List))

	// Profile
	mux.Handle("GET /api/users/me", auth(h.Profile.Me))
	mux.Handle("PUT /api/users/me", auth(h.Profile.Update))

	// WebSocket: token query parameter veya header ile, handler kendi doğrular.
	// Tarayıcılar upgrade isteğine header ekleyemediği için middleware kullanılmaz.
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)
}
