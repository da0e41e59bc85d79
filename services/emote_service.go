package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/akinalp/wordless/models"
	"github.com/akinalp/wordless/pkg"
	"github.com/akinalp/wordless/repository"
	"github.com/akinalp/wordless/ws"
)

// enrichConcurrency, fetch sırasında aynı anda çalışan profil/reaction okuması.
const enrichConcurrency = 8

// EmoteLimiter, subject bazlı emote gönderme limiti.
// *ratelimit.EmoteRateLimiter bu interface'i karşılar.
type EmoteLimiter interface {
	Allow(subject string) bool
}

// FetchResult, fetch_emotes yanıtı.
type FetchResult struct {
	Emotes       []models.EmoteView `json:"emotes"`
	ConnectionID string             `json:"connection_id"`
}

// EmoteService, emote gönderme, listeleme ve silme iş mantığı.
type EmoteService interface {
	// Post, yeni bir emote oluşturur ve tüm bağlantılara emote_create gönderir.
	Post(ctx context.Context, connectionID, subject string, req models.PostEmoteRequest) (*models.EmoteView, error)
	// Fetch, bağlantı kontrolünden sonra en yeni emote'ları döner.
	Fetch(ctx context.Context, connectionID, subject string, limit int) (*FetchResult, error)
	// List, bağlantı kontrolü olmadan en yeni emote'ları döner (REST).
	List(ctx context.Context, limit int) ([]models.EmoteView, error)
	// Delete, emote'u sadece yazarı silebilir. Silme soft'tur ve broadcast edilir.
	Delete(ctx context.Context, connectionID, subject, emoteID string) error
}

type emoteService struct {
	emoteRepo    repository.EmoteRepository
	reactionRepo repository.ReactionRepository
	userRepo     repository.UserRepository
	connRepo     repository.ConnectionRepository
	connections  ConnectionService
	broadcaster  Broadcaster
	vocab        models.EmojiSet
	limiter      EmoteLimiter
	now          func() time.Time
}

// NewEmoteService, constructor.
// limiter nil olabilir; bu durumda emote gönderme sınırlanmaz.
func NewEmoteService(
	emoteRepo repository.EmoteRepository,
	reactionRepo repository.ReactionRepository,
	userRepo repository.UserRepository,
	connRepo repository.ConnectionRepository,
	connections ConnectionService,
	broadcaster Broadcaster,
	vocab models.EmojiSet,
	limiter EmoteLimiter,
) EmoteService {
	return &emoteService{
		emoteRepo:    emoteRepo,
		reactionRepo: reactionRepo,
		userRepo:     userRepo,
		connRepo:     connRepo,
		connections:  connections,
		broadcaster:  broadcaster,
		vocab:        vocab,
		limiter:      limiter,
		now:          time.Now,
	}
}

var (
	postCodes   = ConnectionCodes{NotFound: pkg.CodePostConnNotFound, Failed: pkg.CodePostRegistryFailed}
	fetchCodes  = ConnectionCodes{NotFound: pkg.CodeFetchConnNotFound, Failed: pkg.CodeFetchRegistryFailed}
	deleteCodes = ConnectionCodes{NotFound: pkg.CodeDeleteConnNotFound, Failed: pkg.CodeDeleteRegistryFailed}
)

// Post akışı:
//  1. Emoji dizisi doğrulama (WSK-41)
//  2. Bağlantı kontrolü (WSK-42/43, AUN-05), ardından rate limit (WSK-51)
//  3. Yazar profili subject'ten çözülür (WSK-44/45), body'deki user_id ile
//     eşleşmeli (WSK-46)
//  4. Emote satırı transaction içinde yazılır, sequence number geri okunur (WSK-47)
//  5. Boş reaction state oluşturulur (WSK-48)
//  6. Registry taranır (WSK-49) ve emote_create fan-out edilir (WSK-50)
//
// Kopmuş bağlantılara teslim edilememesi workflow hatası değildir.
func (s *emoteService) Post(ctx context.Context, connectionID, subject string, req models.PostEmoteRequest) (*models.EmoteView, error) {
	emojis, err := models.NormalizeEmojiSequence(req.Slots(), s.vocab)
	if err != nil {
		return nil, pkg.Coded(pkg.CodePostBadRequest, pkg.ErrBadRequest, err)
	}

	if _, err := s.connections.VerifyConnection(ctx, connectionID, subject, postCodes); err != nil {
		return nil, err
	}

	// Limit sadece doğrulanmış bağlantılardan gelen gönderimleri sayar
	if s.limiter != nil && !s.limiter.Allow(subject) {
		return nil, pkg.Coded(pkg.CodePostRateLimited, pkg.ErrTooManyRequests, nil)
	}

	author, err := s.userRepo.GetBySubject(ctx, subject)
	if errors.Is(err, pkg.ErrNotFound) {
		return nil, pkg.Coded(pkg.CodePostProfileNotFound, pkg.ErrNotFound, fmt.Errorf("no profile for subject %s", subject))
	}
	if err != nil {
		return nil, pkg.Coded(pkg.CodePostProfileFailed, pkg.ErrInternal, err)
	}
	if author.ID != req.UserID {
		return nil, pkg.Coded(pkg.CodePostUserMismatch, pkg.ErrBadRequest,
			fmt.Errorf("user_id %q does not belong to the caller", req.UserID))
	}

	emote := &models.Emote{
		ID:         uuid.NewString(),
		UserID:     author.ID,
		ReactionID: uuid.NewString(),
		Emojis:     emojis,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.emoteRepo.Create(ctx, emote); err != nil {
		return nil, pkg.Coded(pkg.CodePostInsertFailed, pkg.ErrInternal, err)
	}

	state := models.NewReactionState(emote.ReactionID)
	if err := s.reactionRepo.Create(ctx, state); err != nil {
		return nil, pkg.Coded(pkg.CodePostReactionInit, pkg.ErrInternal, err)
	}

	view := &models.EmoteView{
		Emote:         *emote,
		UserName:      author.UserName,
		UserAvatarURL: author.AvatarURL,
		Reactions:     state.Summary(),
	}

	conns, err := s.connRepo.ScanAll(ctx)
	if err != nil {
		return nil, pkg.Coded(pkg.CodePostScanFailed, pkg.ErrInternal, err)
	}
	if _, err := s.broadcaster.Broadcast(ctx, conns, ws.Event{Op: ws.OpEmoteCreate, Data: view}); err != nil {
		return nil, pkg.Coded(pkg.CodePostBroadcastFailed, pkg.ErrInternal, err)
	}

	return view, nil
}

func (s *emoteService) Fetch(ctx context.Context, connectionID, subject string, limit int) (*FetchResult, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	if _, err := s.connections.VerifyConnection(ctx, connectionID, subject, fetchCodes); err != nil {
		return nil, err
	}

	views, err := s.listRecent(ctx, limit, subject)
	if err != nil {
		return nil, err
	}
	return &FetchResult{Emotes: views, ConnectionID: connectionID}, nil
}

func (s *emoteService) List(ctx context.Context, limit int) ([]models.EmoteView, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	return s.listRecent(ctx, limit, "")
}

func validateLimit(limit int) error {
	if limit < 1 || limit > models.MaxFetchLimit {
		return pkg.Coded(pkg.CodeFetchInvalidLimit, pkg.ErrBadRequest,
			fmt.Errorf("limit must be between 1 and %d", models.MaxFetchLimit))
	}
	return nil
}

// listRecent, emote'ları okur ve her birini yazar profili ve canlı reaction
// sayaçlarıyla zenginleştirir. subject boş değilse o subject'in aktif
// tepkileri MyReactions'a yazılır.
//
// Zenginleştirme errgroup ile paralel yapılır; ilk hata diğerlerini iptal eder.
// Silinmiş bir profil hata değildir, user_name boş gelir. Reaction state'i
// olmayan emote boş sayaçlarla döner.
func (s *emoteService) listRecent(ctx context.Context, limit int, subject string) ([]models.EmoteView, error) {
	emotes, err := s.emoteRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, pkg.Coded(pkg.CodeFetchQueryFailed, pkg.ErrInternal, err)
	}

	views := make([]models.EmoteView, len(emotes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)

	for i := range emotes {
		i := i
		g.Go(func() error {
			view := models.EmoteView{Emote: emotes[i]}

			author, err := s.userRepo.GetByID(gctx, emotes[i].UserID)
			switch {
			case err == nil:
				view.UserName = author.UserName
				view.UserAvatarURL = author.AvatarURL
			case !errors.Is(err, pkg.ErrNotFound):
				return pkg.Coded(pkg.CodeFetchProfileFailed, pkg.ErrInternal, err)
			}

			state, err := s.reactionRepo.Get(gctx, emotes[i].ReactionID)
			switch {
			case err == nil:
				view.Reactions = state.Summary()
				if subject != "" {
					view.MyReactions = state.ReactedBy(subject)
				}
			case errors.Is(err, pkg.ErrNotFound):
				view.Reactions = models.NewReactionState(emotes[i].ReactionID).Summary()
			default:
				return pkg.Coded(pkg.CodeFetchReactionFailed, pkg.ErrInternal, err)
			}

			views[i] = view
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

// Delete akışı:
//  1. Bağlantı kontrolü (EMT-22/23)
//  2. Emote var mı (EMT-24)
//  3. Çağıran yazar mı (EMT-25)
//  4. is_deleted set edilir (EMT-26)
//  5. emote_delete broadcast (EMT-27)
func (s *emoteService) Delete(ctx context.Context, connectionID, subject, emoteID string) error {
	if _, err := s.connections.VerifyConnection(ctx, connectionID, subject, deleteCodes); err != nil {
		return err
	}

	emote, err := s.emoteRepo.GetByID(ctx, emoteID)
	if errors.Is(err, pkg.ErrNotFound) {
		return pkg.Coded(pkg.CodeDeleteNotFound, pkg.ErrNotFound, fmt.Errorf("emote %s", emoteID))
	}
	if err != nil {
		return pkg.Coded(pkg.CodeDeleteStoreFailed, pkg.ErrInternal, err)
	}

	caller, err := s.userRepo.GetBySubject(ctx, subject)
	if errors.Is(err, pkg.ErrNotFound) {
		return pkg.Coded(pkg.CodeDeleteNotAuthor, pkg.ErrForbidden, errors.New("caller has no profile"))
	}
	if err != nil {
		return pkg.Coded(pkg.CodeDeleteStoreFailed, pkg.ErrInternal, err)
	}
	if caller.ID != emote.UserID {
		return pkg.Coded(pkg.CodeDeleteNotAuthor, pkg.ErrForbidden, fmt.Errorf("emote %s has another author", emoteID))
	}

	if err := s.emoteRepo.SoftDelete(ctx, emoteID); err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return pkg.Coded(pkg.CodeDeleteNotFound, pkg.ErrNotFound, err)
		}
		return pkg.Coded(pkg.CodeDeleteStoreFailed, pkg.ErrInternal, err)
	}

	_, err = s.broadcaster.BroadcastAll(ctx, ws.Event{
		Op:   ws.OpEmoteDelete,
		Data: ws.EmoteDeleteData{EmoteID: emote.ID, ReactionID: emote.ReactionID},
	})
	if err != nil {
		return pkg.Coded(pkg.CodeDeleteBroadcast, pkg.ErrInternal, err)
	}
	return nil
}
