// Package repository, veri erişim katmanını tanımlar.
//
// Repository Pattern: service katmanı doğrudan SQL veya Redis komutu yazmaz,
// buradaki interface'ler üzerinden çalışır. İki backend vardır:
//   - SQLite (sqlite_*.go): emote geçmişi ve profiller
//   - Redis (redis_*.go): connection registry ve reaction state
//
// Tüm "bulunamadı" durumları pkg.ErrNotFound döner; service katmanı bunu
// kendi hata koduna çevirir.
package repository

import (
	"context"

	"github.com/akinalp/wordless/models"
)

// UserRepository, profil veritabanı işlemleri için interface.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetBySubject(ctx context.Context, subject string) (*models.User, error)
	// Upsert, subject'e göre profili oluşturur veya günceller.
	// Kayıt zaten varsa user.ID ve user.CreatedAt mevcut değerlerle doldurulur.
	Upsert(ctx context.Context, user *models.User) error
}
