package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/akinalp/wordless/models"
	"github.com/akinalp/wordless/pkg"
	"github.com/akinalp/wordless/repository"
	"github.com/akinalp/wordless/ws"
)

// DefaultReactionMaxRetries, CompareAndSwap çakışmalarında varsayılan deneme sayısı.
const DefaultReactionMaxRetries = 5

// ReactionService, emote'lara verilen emoji tepkilerinin iş mantığı.
type ReactionService interface {
	// React, subject adına bir emojiyi artırır veya azaltır ve güncel
	// sayaçları tüm bağlantılara broadcast eder.
	React(ctx context.Context, connectionID, subject string, req models.ReactRequest) (*models.ReactionSummary, error)
}

type reactionService struct {
	reactionRepo repository.ReactionRepository
	connections  ConnectionService
	broadcaster  Broadcaster
	vocab        models.EmojiSet
	maxRetries   int
}

// NewReactionService, constructor.
// maxRetries <= 0 ise DefaultReactionMaxRetries kullanılır.
func NewReactionService(
	reactionRepo repository.ReactionRepository,
	connections ConnectionService,
	broadcaster Broadcaster,
	vocab models.EmojiSet,
	maxRetries int,
) ReactionService {
	if maxRetries <= 0 {
		maxRetries = DefaultReactionMaxRetries
	}
	return &reactionService{
		reactionRepo: reactionRepo,
		connections:  connections,
		broadcaster:  broadcaster,
		vocab:        vocab,
		maxRetries:   maxRetries,
	}
}

// reactionCodes, React'ın registry kontrolü için kullandığı kodlar.
var reactionCodes = ConnectionCodes{
	NotFound: pkg.CodeReactConnNotFound,
	Failed:   pkg.CodeReactRegistryFailed,
}

// React akışı:
//  1. Operation ve emoji kontrolü (WSK-37)
//  2. Bağlantı registry'de mi, subject eşleşiyor mu (WSK-26/27, AUN-05)
//  3. Read-modify-write: state oku → geçişi uygula → CompareAndSwap
//     Version çakışırsa baştan, en fazla maxRetries kez (WSK-35)
//  4. reaction_update broadcast (WSK-36)
//
// Reddedilen bir geçiş (ör: DuplicateReaction) store'a hiçbir şey yazmaz.
func (s *reactionService) React(ctx context.Context, connectionID, subject string, req models.ReactRequest) (*models.ReactionSummary, error) {
	if !req.Operation.Valid() {
		return nil, pkg.Coded(pkg.CodeReactInvalidEmoji, pkg.ErrBadRequest,
			fmt.Errorf("unknown operation %q", req.Operation))
	}
	if !s.vocab.Contains(req.EmojiID) {
		return nil, pkg.Coded(pkg.CodeReactInvalidEmoji, pkg.ErrBadRequest,
			fmt.Errorf("unknown emoji %q", req.EmojiID))
	}

	if _, err := s.connections.VerifyConnection(ctx, connectionID, subject, reactionCodes); err != nil {
		return nil, err
	}

	state, err := s.applyWithRetry(ctx, req, subject)
	if err != nil {
		return nil, err
	}

	summary := state.Summary()
	_, err = s.broadcaster.BroadcastAll(ctx, ws.Event{
		Op:   ws.OpReactionUpdate,
		Data: summary,
	})
	if err != nil {
		return nil, pkg.Coded(pkg.CodeReactBroadcastFailed, pkg.ErrInternal, err)
	}

	return &summary, nil
}

func (s *reactionService) applyWithRetry(ctx context.Context, req models.ReactRequest, subject string) (*models.ReactionState, error) {
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		state, err := s.reactionRepo.Get(ctx, req.ReactionID)
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, pkg.Coded(pkg.CodeReactStateNotFound, pkg.ErrNotFound,
				fmt.Errorf("reaction %s", req.ReactionID))
		}
		if err != nil {
			return nil, pkg.Coded(pkg.CodeReactStoreReadFailed, pkg.ErrInternal, err)
		}

		if err := state.Apply(req.Operation, req.EmojiID, subject); err != nil {
			return nil, transitionError(err)
		}

		err = s.reactionRepo.CompareAndSwap(ctx, state, state.Version)
		switch {
		case err == nil:
			return state, nil
		case errors.Is(err, repository.ErrVersionConflict):
			log.Printf("[reaction] version conflict on %s (attempt %d/%d)", req.ReactionID, attempt, s.maxRetries)
			continue
		case errors.Is(err, pkg.ErrNotFound):
			return nil, pkg.Coded(pkg.CodeReactStateNotFound, pkg.ErrNotFound, err)
		default:
			return nil, pkg.Coded(pkg.CodeReactStoreWriteFailed, pkg.ErrInternal, err)
		}
	}

	return nil, pkg.Coded(pkg.CodeReactConflict, pkg.ErrConflict,
		fmt.Errorf("reaction %s: gave up after %d attempts", req.ReactionID, s.maxRetries))
}

// transitionError, ReactionState geçiş hatalarını stabil kodlara çevirir.
func transitionError(err error) error {
	switch {
	case errors.Is(err, models.ErrDuplicateReaction):
		return pkg.Coded(pkg.CodeReactDuplicate, pkg.ErrBadRequest, err)
	case errors.Is(err, models.ErrNothingToDecrement):
		return pkg.Coded(pkg.CodeReactNothingToDecr, pkg.ErrBadRequest, err)
	case errors.Is(err, models.ErrNotReactedYet):
		return pkg.Coded(pkg.CodeReactNotReactedYet, pkg.ErrBadRequest, err)
	case errors.Is(err, models.ErrReactionNotFound):
		return pkg.Coded(pkg.CodeReactEmojiNotFound, pkg.ErrNotFound, err)
	default:
		return pkg.Coded(pkg.CodeReactStoreWriteFailed, pkg.ErrInternal, err)
	}
}
