// Package main, Service katmanı başlatma.
//
// initServices, tüm service implementasyonlarını oluşturur.
// Her service, ihtiyaç duyduğu repository interface'lerini ve diğer
// dependency'leri constructor injection ile alır.
//
// Sıralama: ConnectionService ve Broadcaster, action service'lerinden ÖNCE
// oluşturulur; emote ve reaction service'leri ikisini de kullanır.
package main

import (
	"github.com/akinalp/wordless/config"
	"github.com/akinalp/wordless/models"
	"github.com/akinalp/wordless/pkg/jwks"
	"github.com/akinalp/wordless/pkg/ratelimit"
	"github.com/akinalp/wordless/services"
	"github.com/akinalp/wordless/ws"
)

// Services, tüm service instance'larını tutan container struct.
type Services struct {
	Connection  services.ConnectionService
	Broadcaster services.Broadcaster
	Emote       services.EmoteService
	Reaction    services.ReactionService
	Profile     services.ProfileService
}

// RateLimiters, tüm rate limiter instance'larını tutan container.
// Arka plan temizleme goroutine'leri shutdown'da Stop ile durdurulur.
type RateLimiters struct {
	Connect *ratelimit.ConnectRateLimiter
	Emote   *ratelimit.EmoteRateLimiter
}

// Stop, tüm limiter'ların temizleme goroutine'lerini durdurur.
func (l *RateLimiters) Stop() {
	l.Connect.Stop()
	l.Emote.Stop()
}

// initServices, tüm service'leri ve rate limiter'ları oluşturur.
// hub, broadcaster'ın push channel'ıdır; vocab emoji doğrulaması için paylaşılır.
func initServices(repos *Repositories, hub ws.PushChannel, vocab models.EmojiSet, cfg *config.Config) (*Services, *RateLimiters) {
	limiters := &RateLimiters{
		Connect: ratelimit.NewConnectRateLimiter(cfg.RateLimit.ConnectAttempts, cfg.RateLimit.ConnectWindow),
		Emote: ratelimit.NewEmoteRateLimiter(
			cfg.RateLimit.EmoteMax, cfg.RateLimit.EmoteWindow, cfg.RateLimit.EmoteCooldown,
		),
	}

	fetcher := jwks.NewFetcher(cfg.Identity.KeySetURL(), cfg.Identity.FetchTimeout)
	verifier := services.NewTokenVerifier(fetcher, cfg.Identity.CacheTTL, cfg.Identity.VerifySignature)

	connectionService := services.NewConnectionService(repos.Connection, verifier)
	broadcaster := services.NewBroadcaster(
		hub, repos.Connection, cfg.Broadcast.DeliveryTimeout, cfg.Broadcast.CleanupTimeout,
	)

	svcs := &Services{
		Connection:  connectionService,
		Broadcaster: broadcaster,
		Emote: services.NewEmoteService(
			repos.Emote, repos.Reaction, repos.User, repos.Connection,
			connectionService, broadcaster, vocab, limiters.Emote,
		),
		Reaction: services.NewReactionService(
			repos.Reaction, connectionService, broadcaster, vocab, cfg.Reaction.MaxRetries,
		),
		Profile: services.NewProfileService(repos.User),
	}

	return svcs, limiters
}
