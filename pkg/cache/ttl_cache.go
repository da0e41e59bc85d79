// Package cache, Generic in-memory TTL cache.
//
// TTLCache, belirli bir süre sonra süresi dolan kayıtları tutan
// thread-safe, generic bir cache yapısıdır.
//
// Kullanım alanı: identity provider'ın public signing key set'ini (JWKS)
// bellekte tutmak. Key set ilk ihtiyaçta yüklenir (GetOrLoad) ve
// sonraki doğrulamalar network'e gitmez.
//
// TTL <= 0 verilirse entry'ler hiç expire olmaz, process ömrü boyunca
// geçerlidir. Bu, key set'in "bir kez yükle, sonsuza kadar kullan" davranışıdır.
//
// Thread safety:
// sync.RWMutex ile korunur, birden fazla goroutine aynı anda okuyabilir,
// ama yazma sırasında tüm erişim bloklanır.
package cache

import (
	"sync"
	"time"
)

// entry, cache'teki tek bir kayıttır.
// expiresAt zero value ise entry hiç expire olmaz.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// TTLCache, generic in-memory TTL cache.
//
//	keys := cache.New[string, jwks.KeySet](0, 0) // hiç expire olmaz, cleanup yok
//	set, err := keys.GetOrLoad("jwks", fetch)
type TTLCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	ttl     time.Duration

	// stopCleanup: periyodik temizleme goroutine'ini durdurmak için.
	// Close() çağrıldığında bu channel kapatılır.
	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// New, yeni bir TTLCache oluşturur.
//
// ttl: her entry'nin yaşam süresi. <= 0 → sonsuz.
// cleanupInterval: süresi dolan entry'lerin ne sıklıkla map'ten silineceği.
// <= 0 → temizleme goroutine'i başlatılmaz (expire olmayan cache'ler için gereksiz).
func New[K comparable, V any](ttl, cleanupInterval time.Duration) *TTLCache[K, V] {
	c := &TTLCache[K, V]{
		entries:     make(map[K]entry[V]),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go func() {
			ticker := time.NewTicker(cleanupInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					c.evictExpired()
				case <-c.stopCleanup:
					return
				}
			}
		}()
	}

	return c
}

// Get, cache'ten bir değer okur.
//
// (value, true): key var ve süresi dolmamış.
// (zero value, false): key yok veya süresi dolmuş.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.expired(time.Now()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set, cache'e bir değer yazar (TTL ile).
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry[V]{value: value}
	if c.ttl > 0 {
		e.expiresAt = time.Now().Add(c.ttl)
	}
	c.entries[key] = e
}

// GetOrLoad, key cache'te varsa döner; yoksa loader'ı çağırır,
// başarılı sonucu cache'e yazar ve döner.
//
// Loader lock dışında çalışır, yavaş bir network çağrısı diğer okuyucuları
// bloklamaz. Aynı anda iki miss olursa loader iki kez çalışabilir,
// son yazan kazanır. Loader hata dönerse cache'e hiçbir şey yazılmaz.
func (c *TTLCache[K, V]) GetOrLoad(key K, loader func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := loader()
	if err != nil {
		var zero V
		return zero, err
	}

	c.Set(key, v)
	return v, nil
}

// Len, cache'teki toplam entry sayısını döner (süresi dolmuşlar dahil).
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Close, periyodik temizleme goroutine'ini durdurur.
// Birden fazla çağrılması güvenlidir.
func (c *TTLCache[K, V]) Close() {
	c.closeOnce.Do(func() {
		close(c.stopCleanup)
	})
}

// evictExpired, süresi dolan entry'leri map'ten fiziksel olarak siler.
func (c *TTLCache[K, V]) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
		}
	}
}
