// Package models, uygulamanın domain modellerini (veri yapıları) tanımlar.
//
// Model nedir?
// Veritabanındaki bir tablonun (veya Redis kaydının) Go karşılığıdır.
// Aynı zamanda API'den gelen/giden verilerin şeklini de belirler.
//
// Go'da `json:"user_name"` gibi tag'ler, struct field'larının JSON'a
// nasıl serialize/deserialize edileceğini belirler.
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// User, bir kullanıcının profilidir.
//
// Kimlik doğrulama dış bir identity provider'dadır, burada şifre tutulmaz.
// Subject, provider'ın "sub" claim'i ile eşleşir ve UNIQUE'dir.
type User struct {
	ID        string    `json:"id"`
	Subject   string    `json:"-"`
	UserName  string    `json:"user_name"`
	AvatarURL *string   `json:"avatar_url"` // *string = nullable
	CreatedAt time.Time `json:"created_at"`
}

// UpdateProfileRequest, PUT /api/users/me body'si.
type UpdateProfileRequest struct {
	UserName  string  `json:"user_name"`
	AvatarURL *string `json:"avatar_url"`
}

// Validate, profil isteğinin geçerli olup olmadığını kontrol eder.
//   - UserName: 1-32 karakter (rune), baştaki/sondaki boşluklar kırpılır
//   - AvatarURL: opsiyonel, max 512 karakter, http(s) ile başlamalı
func (r *UpdateProfileRequest) Validate() error {
	r.UserName = strings.TrimSpace(r.UserName)

	n := utf8.RuneCountInString(r.UserName)
	if n < 1 || n > 32 {
		return fmt.Errorf("user_name must be between 1 and 32 characters")
	}

	if r.AvatarURL != nil {
		u := strings.TrimSpace(*r.AvatarURL)
		if u == "" {
			r.AvatarURL = nil
			return nil
		}
		if len(u) > 512 {
			return fmt.Errorf("avatar_url is too long")
		}
		if !strings.HasPrefix(u, "https://") && !strings.HasPrefix(u, "http://") {
			return fmt.Errorf("avatar_url must be an http(s) url")
		}
		r.AvatarURL = &u
	}

	return nil
}
