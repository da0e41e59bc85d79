package repository

import (
	"context"

	"github.com/akinalp/wordless/models"
)

// EmoteRepository, emote geçmişi için interface.
//
// Emote'lar asla fiziksel olarak silinmez. SoftDelete is_deleted flag'ini set eder
// ve ListRecent bu kayıtları dışarıda bırakır.
type EmoteRepository interface {
	// Create, emote'u yazar ve storage'ın atadığı SequenceNumber'ı emote'a doldurur.
	Create(ctx context.Context, emote *models.Emote) error
	// GetByID, silinmemiş bir emote'u döner; silinmişse veya yoksa pkg.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Emote, error)
	// ListRecent, silinmemiş emote'ları en yeniden eskiye sıralı döner (en fazla limit adet).
	ListRecent(ctx context.Context, limit int) ([]models.Emote, error)
	SoftDelete(ctx context.Context, id string) error
}
