package models

import "github.com/golang-jwt/jwt/v5"

// IdentityClaims, identity provider'ın verdiği access token'ın payload'ı.
//
// Sadece "sub" (RegisteredClaims.Subject) zorunludur. Cognito access
// token'larında "username" ve "token_use" da bulunur; varsa taşınır.
//
// models paketinde tanımlanır çünkü services, ws ve middleware
// katmanlarının hepsi bu tipi kullanır.
type IdentityClaims struct {
	Username string `json:"username,omitempty"`
	TokenUse string `json:"token_use,omitempty"`
	jwt.RegisteredClaims
}
