// Package handlers, HTTP ve WebSocket action handler'larını içerir.
//
// Handler'lar "thin"dir: request parse + service call + response write.
// İş mantığı ve hata kodları services katmanındadır.
package handlers

import (
	"context"

	"github.com/akinalp/wordless/models"
)

// contextKey, context'te değer taşımak için kullanılan key tipi.
// String key kullanmak başka paketlerle çakışmaya neden olabilir.
type contextKey string

// ClaimsContextKey, doğrulanmış token claim'lerinin context key'i.
// middleware.AuthMiddleware tarafından eklenir.
const ClaimsContextKey contextKey = "claims"

// WithClaims, claim'leri context'e ekler.
func WithClaims(ctx context.Context, claims *models.IdentityClaims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

// ClaimsFromContext, context'teki claim'leri döner.
func ClaimsFromContext(ctx context.Context) (*models.IdentityClaims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*models.IdentityClaims)
	return claims, ok && claims != nil
}
