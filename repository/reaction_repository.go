package repository

import (
	"context"
	"errors"

	"github.com/akinalp/wordless/models"
)

// ErrVersionConflict, CompareAndSwap'ta store'daki version beklenenle
// eşleşmediğinde (başka bir yazıcı araya girdiğinde) döner.
var ErrVersionConflict = errors.New("reaction state version conflict")

// ReactionRepository, emote başına reaction state'i tutar.
//
// Yazmalar optimistic locking ile yapılır: çağıran state'i okur, bellekte
// değiştirir ve okuduğu version'la CompareAndSwap çağırır. Arada başka bir
// yazma olduysa ErrVersionConflict döner ve çağıran tekrar dener.
type ReactionRepository interface {
	// Create, yeni bir state yazar. Aynı ReactionID zaten varsa pkg.ErrAlreadyExists.
	Create(ctx context.Context, state *models.ReactionState) error
	// Get, state yoksa pkg.ErrNotFound döner.
	Get(ctx context.Context, reactionID string) (*models.ReactionState, error)
	// CompareAndSwap, store'daki version expectedVersion ise state'i yazar
	// ve state.Version'ı expectedVersion+1 yapar.
	CompareAndSwap(ctx context.Context, state *models.ReactionState, expectedVersion int64) error
}
