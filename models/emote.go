package models

import (
	"errors"
	"time"
)

// MaxEmojisPerEmote, bir emote'taki maksimum emoji sayısı.
const MaxEmojisPerEmote = 4

// ErrInvalidEmojiSequence, emoji dizisi kurallara uymadığında döner.
var ErrInvalidEmojiSequence = errors.New("invalid emoji sequence")

// EmojiSet, bir emoji kimliğinin bilinip bilinmediğini söyler.
// pkg/emoji.Vocabulary bu interface'i karşılar.
type EmojiSet interface {
	Contains(id string) bool
}

// Emote, 1-4 emojiden oluşan kısa ömürlü bir gönderi.
// DB'deki "emotes" tablosunun Go karşılığı.
//
// Emojis her zaman kompakttır: boş slot içermez, uzunluğu 1..4.
// DB'de dört nullable kolona (emoji1..emoji4) yazılır; eksik olanlar NULL'dır.
type Emote struct {
	SequenceNumber int64     `json:"sequence_number"`
	ID             string    `json:"emote_id"`
	UserID         string    `json:"user_id"`
	ReactionID     string    `json:"reaction_id"`
	Emojis         []string  `json:"emojis"`
	CreatedAt      time.Time `json:"created_at"`
	IsDeleted      bool      `json:"-"`
}

// EmoteView, broadcast ve fetch yanıtlarında gönderilen zenginleştirilmiş emote.
// Yazar profili ve canlı reaction sayaçları ile birleştirilir.
type EmoteView struct {
	Emote
	UserName      string          `json:"user_name"`
	UserAvatarURL *string         `json:"user_avatar_url"`
	Reactions     ReactionSummary `json:"reactions"`
	// MyReactions, isteği yapan subject'in bu emote'a verdiği emoji id'leri.
	// Sadece fetch_emotes yanıtında dolar.
	MyReactions []string `json:"my_reactions,omitempty"`
}

// PostEmoteRequest, post_emote action'ının body'si.
//
// Emojis dört slotlu bir dizidir: null veya "" boş slot demektir.
// ["", ":a:"] gibi boşluktan sonra dolu slot içeren diziler reddedilir.
type PostEmoteRequest struct {
	UserID string    `json:"user_id"`
	Emojis []*string `json:"emojis"`
}

// NormalizeEmojiSequence, slot dizisini doğrular ve kompakt emoji listesini döner.
//
// Kurallar:
//   - En fazla 4 slot
//   - Bir slot boşsa sonraki tüm slotlar da boş olmalı (prefix-only)
//   - Dolu her slot vocabulary'de olmalı
//   - En az bir dolu slot
func NormalizeEmojiSequence(slots []string, vocab EmojiSet) ([]string, error) {
	if len(slots) == 0 || len(slots) > MaxEmojisPerEmote {
		return nil, ErrInvalidEmojiSequence
	}

	emojis := make([]string, 0, len(slots))
	sawEmpty := false
	for _, slot := range slots {
		if slot == "" {
			sawEmpty = true
			continue
		}
		if sawEmpty {
			return nil, ErrInvalidEmojiSequence
		}
		if !vocab.Contains(slot) {
			return nil, ErrInvalidEmojiSequence
		}
		emojis = append(emojis, slot)
	}

	if len(emojis) == 0 {
		return nil, ErrInvalidEmojiSequence
	}
	return emojis, nil
}

// Slots, PostEmoteRequest.Emojis'i string slotlara çevirir (nil → "").
func (r *PostEmoteRequest) Slots() []string {
	slots := make([]string, len(r.Emojis))
	for i, e := range r.Emojis {
		if e != nil {
			slots[i] = *e
		}
	}
	return slots
}

// FetchEmotesRequest, fetch_emotes action'ının body'si.
type FetchEmotesRequest struct {
	Limit int `json:"limit"`
}

// Fetch limit sınırları.
const (
	DefaultFetchLimit = 20
	MaxFetchLimit     = 100
)

// DeleteEmoteRequest, delete_emote action'ının body'si.
type DeleteEmoteRequest struct {
	EmoteID string `json:"emote_id"`
}

// ReactRequest, react action'ının body'si.
type ReactRequest struct {
	ReactionID string     `json:"reaction_id"`
	EmojiID    string     `json:"emoji_id"`
	Operation  ReactionOp `json:"operation"`
}
