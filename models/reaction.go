package models

import (
	"errors"
	"slices"
)

// Reaction state machine error'ları.
// Service katmanı bunları stabil hata kodlarına çevirir (WSK-30..34).
var (
	// ErrDuplicateReaction: subject bu emojiye zaten tepki vermiş.
	ErrDuplicateReaction = errors.New("duplicate reaction")
	// ErrReactionNotFound: emoji için hiç counter yok (count implicit 0).
	ErrReactionNotFound = errors.New("reaction not found")
	// ErrNothingToDecrement: counter var ama count 0.
	ErrNothingToDecrement = errors.New("nothing to decrement")
	// ErrNotReactedYet: subject bu emojiye tepki vermemiş.
	ErrNotReactedYet = errors.New("not reacted yet")
)

// ReactionOp, bir reaction event'inin yönü.
type ReactionOp string

const (
	ReactionIncrement ReactionOp = "increment"
	ReactionDecrement ReactionOp = "decrement"
)

// Valid, op'un tanınan bir değer olup olmadığını döner.
func (op ReactionOp) Valid() bool {
	return op == ReactionIncrement || op == ReactionDecrement
}

// EmojiCounter, bir emote üzerindeki tek bir emojinin sayacı.
//
// Invariant: Count == len(ReactedSubjects). Subject listesi client'a gönderilmez
// (json:"-"), kimlikler sadece store'da tutulur.
type EmojiCounter struct {
	EmojiID         string   `json:"emoji_id" msgpack:"emoji_id"`
	Count           int      `json:"count" msgpack:"count"`
	ReactedSubjects []string `json:"-" msgpack:"subjects"`
}

func (c *EmojiCounter) hasSubject(subject string) bool {
	return slices.Contains(c.ReactedSubjects, subject)
}

// ReactionState, bir emote'un tüm emoji sayaçları.
//
// Counters sıralıdır: bir emojiye ilk tepki geldiğinde sona eklenir,
// sayaç 0'a düşse bile listeden çıkarılmaz.
//
// Version, optimistic locking için kullanılır: oluşturulduğunda 1,
// her başarılı yazmada +1. Store, beklenen version'la eşleşmeyen yazmaları reddeder.
type ReactionState struct {
	ReactionID string         `json:"reaction_id"`
	Counters   []EmojiCounter `json:"counters"`
	Version    int64          `json:"version"`
}

// NewReactionState, boş bir ReactionState oluşturur.
func NewReactionState(reactionID string) *ReactionState {
	return &ReactionState{
		ReactionID: reactionID,
		Counters:   []EmojiCounter{},
		Version:    1,
	}
}

func (s *ReactionState) counter(emojiID string) *EmojiCounter {
	for i := range s.Counters {
		if s.Counters[i].EmojiID == emojiID {
			return &s.Counters[i]
		}
	}
	return nil
}

// Apply, op'a göre Increment veya Decrement çağırır.
func (s *ReactionState) Apply(op ReactionOp, emojiID, subject string) error {
	if op == ReactionDecrement {
		return s.Decrement(emojiID, subject)
	}
	return s.Increment(emojiID, subject)
}

// Increment, subject'in emojiye tepkisini ekler.
//
// Counter yoksa count=1 ile oluşturulur. Subject zaten listedeyse
// ErrDuplicateReaction döner ve state değişmez.
func (s *ReactionState) Increment(emojiID, subject string) error {
	c := s.counter(emojiID)
	if c == nil {
		s.Counters = append(s.Counters, EmojiCounter{
			EmojiID:         emojiID,
			Count:           1,
			ReactedSubjects: []string{subject},
		})
		return nil
	}

	if c.hasSubject(subject) {
		return ErrDuplicateReaction
	}

	c.ReactedSubjects = append(c.ReactedSubjects, subject)
	c.Count++
	return nil
}

// Decrement, subject'in emojiye tepkisini kaldırır.
//
// Kontrol sırası: counter yok → ErrReactionNotFound, count 0 → ErrNothingToDecrement,
// subject listede değil → ErrNotReactedYet. Hata durumunda state değişmez.
func (s *ReactionState) Decrement(emojiID, subject string) error {
	c := s.counter(emojiID)
	if c == nil {
		return ErrReactionNotFound
	}
	if c.Count == 0 {
		return ErrNothingToDecrement
	}

	idx := slices.Index(c.ReactedSubjects, subject)
	if idx < 0 {
		return ErrNotReactedYet
	}

	c.ReactedSubjects = slices.Delete(c.ReactedSubjects, idx, idx+1)
	c.Count--
	return nil
}

// Total, tüm sayaçların toplamı.
func (s *ReactionState) Total() int {
	total := 0
	for _, c := range s.Counters {
		total += c.Count
	}
	return total
}

// ReactedBy, subject'in tepki verdiği emoji id'lerini sayaç sırasıyla döner.
// fetch_emotes bunu EmoteView.MyReactions olarak gönderir.
func (s *ReactionState) ReactedBy(subject string) []string {
	var ids []string
	for i := range s.Counters {
		if s.Counters[i].hasSubject(subject) {
			ids = append(ids, s.Counters[i].EmojiID)
		}
	}
	return ids
}

// ReactionSummary, broadcast ve fetch payload'larında kullanılan
// subject listesi içermeyen görünüm.
type ReactionSummary struct {
	ReactionID string         `json:"reaction_id"`
	Emojis     []EmojiCounter `json:"emojis"`
	Total      int            `json:"total"`
}

// Summary, state'in client'a gidecek özetini döner.
func (s *ReactionState) Summary() ReactionSummary {
	emojis := make([]EmojiCounter, len(s.Counters))
	for i, c := range s.Counters {
		emojis[i] = EmojiCounter{EmojiID: c.EmojiID, Count: c.Count}
	}
	return ReactionSummary{
		ReactionID: s.ReactionID,
		Emojis:     emojis,
		Total:      s.Total(),
	}
}
