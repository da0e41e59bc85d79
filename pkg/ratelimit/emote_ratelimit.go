// EmoteRateLimiter, emote spam koruması için subject bazlı rate limiting.
//
// ConnectRateLimiter'dan farklar:
//   - Key: identity subject (IP değil), token doğrulanmış kullanıcı bazlı takip.
//     Aynı kullanıcının birden fazla bağlantısı tek bir bucket'ı paylaşır.
//   - Cooldown: Window süresi ve ceza süresi (cooldown) ayrıdır.
//     Limit aşıldığında kullanıcı cooldown süresi kadar bekler.
//
// Varsayılan davranış:
//   - 10 saniye window içinde 5 emote → izin verilir.
//   - 6. emote'ta cooldown başlar → 30 saniye boyunca tüm emote'lar reddedilir.
//   - Cooldown bitince window sıfırlanır.
package ratelimit

import (
	"sync"
	"time"
)

// emoteBucket, bir subject için emote sayacı ve cooldown bilgisi tutar.
//
// İki durumlu:
// 1. Normal mod: count artırılır, windowStart bazlı pencere kontrolü.
// 2. Cooldown mod: cooldownUntil > now → tüm emote'lar reddedilir.
type emoteBucket struct {
	count         int
	windowStart   time.Time
	cooldownUntil time.Time // zero value = cooldown yok
}

// EmoteRateLimiter, subject bazlı emote spam koruması.
//
//	limiter := NewEmoteRateLimiter(5, 10*time.Second, 30*time.Second)
//	defer limiter.Stop()
//	if !limiter.Allow(subject) { return WSK-51 }
type EmoteRateLimiter struct {
	mu          sync.RWMutex
	buckets     map[string]*emoteBucket
	maxEmotes   int
	window      time.Duration
	cooldown    time.Duration
	now         func() time.Time
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewEmoteRateLimiter, yeni emote rate limiter oluşturur ve arka plan
// temizleme goroutine'ini başlatır.
//
// maxEmotes <= 0 → limiter devre dışı, Allow her zaman true döner.
func NewEmoteRateLimiter(maxEmotes int, window, cooldown time.Duration) *EmoteRateLimiter {
	rl := &EmoteRateLimiter{
		buckets:     make(map[string]*emoteBucket),
		maxEmotes:   maxEmotes,
		window:      window,
		cooldown:    cooldown,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow, verilen subject'in emote göndermesine izin verilip verilmediğini kontrol eder.
//
// Akış:
// 1. Cooldown'daysa → reject (cooldown bitmeden hiçbir emote geçmez).
// 2. Window dolmuşsa → yeni pencere başlat.
// 3. Window içindeyse → count artır, max aşıldıysa cooldown başlat.
func (rl *EmoteRateLimiter) Allow(subject string) bool {
	if rl.maxEmotes <= 0 {
		return true
	}

	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[subject]
	if !exists {
		rl.buckets[subject] = &emoteBucket{count: 1, windowStart: now}
		return true
	}

	if !b.cooldownUntil.IsZero() && now.Before(b.cooldownUntil) {
		return false
	}

	// Cooldown bitti, yeni pencere başlat
	if !b.cooldownUntil.IsZero() {
		b.count = 1
		b.windowStart = now
		b.cooldownUntil = time.Time{}
		return true
	}

	if now.Sub(b.windowStart) > rl.window {
		b.count = 1
		b.windowStart = now
		return true
	}

	b.count++
	if b.count > rl.maxEmotes {
		b.cooldownUntil = now.Add(rl.cooldown)
		return false
	}

	return true
}

// CooldownSeconds, kalan cooldown süresini saniye cinsinden döner.
// Cooldown yoksa 0 döner.
func (rl *EmoteRateLimiter) CooldownSeconds(subject string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	b, exists := rl.buckets[subject]
	if !exists || b.cooldownUntil.IsZero() {
		return 0
	}

	remaining := b.cooldownUntil.Sub(rl.now())
	if remaining <= 0 {
		return 0
	}

	// +1 yuvarlama, client'ın tam süreyi beklemesi için
	return int(remaining.Seconds()) + 1
}

// Stop, temizleme goroutine'ini durdurur. Birden fazla çağrılabilir.
func (rl *EmoteRateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// cleanupLoop, arka planda süresi dolmuş bucket'ları temizler (30 saniyede bir).
func (rl *EmoteRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(30 * time.Second)
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

// cleanup, hem window'u hem cooldown'u bitmiş bucket'ları siler.
// Cooldown'daki subject'lerin bucket'ı yanlışlıkla silinmez.
func (rl *EmoteRateLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for subject, b := range rl.buckets {
		windowExpired := now.Sub(b.windowStart) > rl.window
		cooldownExpired := b.cooldownUntil.IsZero() || now.After(b.cooldownUntil)

		if windowExpired && cooldownExpired {
			delete(rl.buckets, subject)
		}
	}
}
