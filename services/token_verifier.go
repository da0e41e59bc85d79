// Package services, iş mantığı katmanını içerir.
//
// Her service bir interface + unexported struct + constructor'dan oluşur.
// Constructor interface döner; handler'lar ve testler concrete tipe bağlı kalmaz.
//
// Service'ler repository'ler ve ws.PushChannel üzerinden çalışır, hatalarını
// pkg.CodedError olarak döner. Hata kodu (ör: "WSK-42") hatanın oluştuğu yerde
// belirlenir; handler katmanı sadece yanıta çevirir.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/akinalp/wordless/models"
	"github.com/akinalp/wordless/pkg"
	"github.com/akinalp/wordless/pkg/cache"
	"github.com/akinalp/wordless/pkg/jwks"
)

// keySetCacheKey, cache'teki tek key set girdisinin anahtarı.
const keySetCacheKey = "jwks"

// TokenVerifier, identity provider'ın verdiği access token'ı doğrular.
type TokenVerifier interface {
	// Verify, ham JWT'yi (Bearer prefix'i olmadan) doğrular ve claim'leri döner.
	// Hatalar AUN-02..06 kodlarını taşır.
	Verify(ctx context.Context, token string) (*models.IdentityClaims, error)
}

// KeySetSource, public signing key set'in kaynağı. *jwks.Fetcher bunu karşılar.
type KeySetSource interface {
	Fetch(ctx context.Context) (jwks.KeySet, error)
}

type jwksTokenVerifier struct {
	source          KeySetSource
	keys            *cache.TTLCache[string, jwks.KeySet]
	verifySignature bool
	parser          *jwt.Parser
}

// NewTokenVerifier, JWKS tabanlı bir TokenVerifier oluşturur.
//
// Key set ilk kullanımda indirilir ve cache'lenir. cacheTTL <= 0 ise
// süreç boyunca bir daha indirilmez. verifySignature false ise token
// sadece decode edilir: imza kontrol edilmez, kid'in key set'te olması yeterlidir.
func NewTokenVerifier(source KeySetSource, cacheTTL time.Duration, verifySignature bool) TokenVerifier {
	return &jwksTokenVerifier{
		source:          source,
		keys:            cache.New[string, jwks.KeySet](cacheTTL, 0),
		verifySignature: verifySignature,
		parser:          jwt.NewParser(),
	}
}

// Verify akışı:
//  1. Key set (cache veya fetch), hata → AUN-02
//  2. İmzasız decode, hata → AUN-03
//  3. Header'daki kid key set'te yoksa → AUN-04
//  4. (opsiyonel) RS256 imza + exp/nbf kontrolü, hata → AUN-06
//  5. "sub" boşsa → AUN-03
func (v *jwksTokenVerifier) Verify(ctx context.Context, tokenString string) (*models.IdentityClaims, error) {
	keys, err := v.keys.GetOrLoad(keySetCacheKey, func() (jwks.KeySet, error) {
		return v.source.Fetch(ctx)
	})
	if err != nil {
		return nil, pkg.Coded(pkg.CodeKeySetUnavailable, pkg.ErrInternal, err)
	}

	claims := &models.IdentityClaims{}
	token, _, err := v.parser.ParseUnverified(tokenString, claims)
	if err != nil {
		return nil, pkg.Coded(pkg.CodeMalformedToken, pkg.ErrUnauthorized, err)
	}

	kid, _ := token.Header["kid"].(string)
	key, ok := keys.Lookup(kid)
	if !ok {
		return nil, pkg.Coded(pkg.CodeUnknownSigningKey, pkg.ErrUnauthorized,
			fmt.Errorf("kid %q not in key set", kid))
	}

	if v.verifySignature {
		claims = &models.IdentityClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims,
			func(*jwt.Token) (any, error) { return key.Key, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		)
		if err != nil {
			return nil, pkg.Coded(pkg.CodeSignatureInvalid, pkg.ErrUnauthorized, err)
		}
	}

	if claims.Subject == "" {
		return nil, pkg.Coded(pkg.CodeMalformedToken, pkg.ErrUnauthorized, errors.New("token has no subject"))
	}

	return claims, nil
}

// BearerToken, "Bearer <jwt>" değerinden token'ı ayıklar.
// Değer yoksa, prefix eksikse veya token boşsa AUN-01 döner.
func BearerToken(authorization string) (string, error) {
	token, ok := strings.CutPrefix(strings.TrimSpace(authorization), "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return "", pkg.Coded(pkg.CodeBearerMissing, pkg.ErrUnauthorized, nil)
	}
	return token, nil
}
