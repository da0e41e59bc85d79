// Package main, Handler katmanı başlatma.
//
// initHandlers, tüm HTTP handler'larını ve WebSocket action router'ını oluşturur.
// Handler'lar "thin"dir: sadece parse + service call + response write.
package main

import (
	"github.com/akinalp/wordless/handlers"
	"github.com/akinalp/wordless/ws"
)

// Handlers, tüm handler instance'larını tutan container struct.
type Handlers struct {
	Router  *handlers.Router
	Emote   *handlers.EmoteHandler
	Profile *handlers.ProfileHandler
	Health  *handlers.HealthHandler
	WS      *ws.Handler
}

// initHandlers, tüm handler'ları service ve rate limiter dependency'leri ile oluşturur.
func initHandlers(svcs *Services, limiters *RateLimiters, hub *ws.Hub) *Handlers {
	router := handlers.NewRouter(svcs.Connection, svcs.Emote, svcs.Reaction)

	return &Handlers{
		Router:  router,
		Emote:   handlers.NewEmoteHandler(svcs.Emote),
		Profile: handlers.NewProfileHandler(svcs.Profile),
		Health:  handlers.NewHealthHandler(hub),
		WS:      ws.NewHandler(hub, svcs.Connection, router, limiters.Connect),
	}
}
