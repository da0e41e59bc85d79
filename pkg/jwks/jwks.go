// Package jwks, identity provider'ın public signing key set'ini (JWKS) indirir.
//
// Endpoint formatı (RFC 7517):
//
//	{ "keys": [ { "kid": "...", "kty": "RSA", "alg": "RS256", "n": "...", "e": "AQAB" } ] }
//
// Key'lerin parse edilmesi go-jose'a bırakılır; bu paket sadece HTTP fetch,
// timeout ve kid bazlı lookup'ı sağlar. Cache'leme çağıranın sorumluluğundadır
// (bkz. pkg/cache.TTLCache.GetOrLoad).
package jwks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jose "github.com/go-jose/go-jose/v3"
	"github.com/goccy/go-json"
)

// maxBodySize, JWKS yanıtı için üst sınır. Gerçek key set'ler birkaç KB'dır.
const maxBodySize = 1 << 20

// ErrEmptyKeySet, endpoint hiç key dönmediğinde döner.
var ErrEmptyKeySet = errors.New("jwks: key set is empty")

// KeySet, kid → key eşlemesi.
type KeySet struct {
	set jose.JSONWebKeySet
}

// NewKeySet, verilen key'lerden bir KeySet oluşturur (test ve statik config için).
func NewKeySet(keys ...jose.JSONWebKey) KeySet {
	return KeySet{set: jose.JSONWebKeySet{Keys: keys}}
}

// Lookup, kid'e karşılık gelen ilk key'i döner.
func (s KeySet) Lookup(kid string) (jose.JSONWebKey, bool) {
	keys := s.set.Key(kid)
	if len(keys) == 0 {
		return jose.JSONWebKey{}, false
	}
	return keys[0], true
}

// Len, set'teki key sayısı.
func (s KeySet) Len() int {
	return len(s.set.Keys)
}

// Fetcher, JWKS endpoint'inden key set indirir.
type Fetcher struct {
	url    string
	client *http.Client
}

// NewFetcher, yeni bir Fetcher oluşturur.
// timeout tüm isteği (bağlantı + body okuma) kapsar.
func NewFetcher(url string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch, key set'i indirir ve parse eder.
func (f *Fetcher) Fetch(ctx context.Context) (KeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return KeySet{}, fmt.Errorf("jwks: failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return KeySet{}, fmt.Errorf("jwks: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return KeySet{}, fmt.Errorf("jwks: unexpected status %d from %s", resp.StatusCode, f.url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return KeySet{}, fmt.Errorf("jwks: failed to read body: %w", err)
	}

	var set jose.JSONWebKeySet
	if err := json.Unmarshal(body, &set); err != nil {
		return KeySet{}, fmt.Errorf("jwks: failed to decode key set: %w", err)
	}
	if len(set.Keys) == 0 {
		return KeySet{}, ErrEmptyKeySet
	}

	return KeySet{set: set}, nil
}

// CognitoURL, AWS Cognito user pool'unun JWKS adresini üretir.
func CognitoURL(region, userPoolID string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s/.well-known/jwks.json", region, userPoolID)
}
