// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Go'da middleware bir fonksiyondur:
//
//	func(next http.Handler) http.Handler
//
// Middleware kendi işini yapar (ör: token doğrula), sonra next'i çağırır.
// Hata varsa next çağrılmaz ve request burada durur.
package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/akinalp/wordless/handlers"
	"github.com/akinalp/wordless/models"
	"github.com/akinalp/wordless/pkg"
)

// Authenticator, "Bearer <jwt>" değerini doğrular.
// services.ConnectionService bu interface'i karşılar.
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (*models.IdentityClaims, error)
}

// AuthMiddleware, identity provider token'ı zorunlu kılan middleware.
type AuthMiddleware struct {
	auth Authenticator
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Require, token zorunlu kılan middleware.
//
// HTTP header formatı: Authorization: Bearer <token>
//
// Akış:
//  1. Header'ı Authenticator'a ver (prefix kontrolü dahil, eksikse AUN-01)
//  2. Token geçersizse → AUN-02..06 kodu ve ilgili status, next ÇAĞRILMAZ
//  3. Geçerliyse claim'leri context'e ekle → next
//
// Profil kaydı aranmaz: GET /api/users/me profil yokken de çağrılabilmelidir.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.auth.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			log.Printf("[auth] %s %s rejected: %v", r.Method, r.URL.Path, err)
			pkg.Error(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(handlers.WithClaims(r.Context(), claims)))
	})
}
