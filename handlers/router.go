package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/akinalp/wordless/models"
	"github.com/akinalp/wordless/pkg"
	"github.com/akinalp/wordless/services"
	"github.com/akinalp/wordless/ws"
)

// Router, WebSocket üzerinden gelen action'ları ilgili service'e yönlendirir.
// ws.MessageDispatcher interface'ini karşılar.
//
// Her action aynı sırayla işlenir:
//  1. isInvalidRequest (action'ın "bad request" kodu, 400)
//  2. Authorization doğrulaması (AUN-01..06)
//  3. Body decode
//  4. Service çağrısı, hata kodu service'ten gelir
type Router struct {
	connections services.ConnectionService
	emotes      services.EmoteService
	reactions   services.ReactionService
}

// NewRouter, constructor.
func NewRouter(connections services.ConnectionService, emotes services.EmoteService, reactions services.ReactionService) *Router {
	return &Router{
		connections: connections,
		emotes:      emotes,
		reactions:   reactions,
	}
}

// Dispatch, action'ı işler ve gönderene dönecek yanıtı üretir.
func (rt *Router) Dispatch(ctx context.Context, req ws.Request) pkg.ActionResponse {
	switch req.Action {
	case ws.ActionPostEmote:
		return rt.postEmote(ctx, req)
	case ws.ActionReact:
		return rt.react(ctx, req)
	case ws.ActionFetchEmotes:
		return rt.fetchEmotes(ctx, req)
	case ws.ActionDeleteEmote:
		return rt.deleteEmote(ctx, req)
	default:
		log.Printf("[router] unknown action %q from conn %s", req.Action, req.ConnectionID)
		return pkg.ActionResponse{
			RequestID:  req.RequestID,
			Action:     req.Action,
			StatusCode: http.StatusBadRequest,
			Error:      "unknown action",
		}
	}
}

// post_emote
//
//	{ "user_id": "...", "emojis": [":smile:", ":fire:", null, null] }
func (rt *Router) postEmote(ctx context.Context, req ws.Request) pkg.ActionResponse {
	var body models.PostEmoteRequest
	claims, err := rt.prepare(ctx, req, pkg.CodePostBadRequest, &body, "user_id", "emojis")
	if err != nil {
		return rt.fail(req, pkg.CodePostBadRequest, err)
	}

	view, err := rt.emotes.Post(ctx, req.ConnectionID, claims.Subject, body)
	if err != nil {
		return rt.fail(req, pkg.CodePostInsertFailed, err)
	}
	return pkg.OK(req.Action, req.RequestID, view)
}

// react
//
//	{ "reaction_id": "...", "emoji_id": ":fire:", "operation": "increment" }
func (rt *Router) react(ctx context.Context, req ws.Request) pkg.ActionResponse {
	var body models.ReactRequest
	claims, err := rt.prepare(ctx, req, pkg.CodeReactBadRequest, &body, "reaction_id", "emoji_id", "operation")
	if err != nil {
		return rt.fail(req, pkg.CodeReactBadRequest, err)
	}

	summary, err := rt.reactions.React(ctx, req.ConnectionID, claims.Subject, body)
	if err != nil {
		return rt.fail(req, pkg.CodeReactStoreWriteFailed, err)
	}
	return pkg.OK(req.Action, req.RequestID, summary)
}

// fetch_emotes
//
//	{ "limit": 20 }
func (rt *Router) fetchEmotes(ctx context.Context, req ws.Request) pkg.ActionResponse {
	var body models.FetchEmotesRequest
	claims, err := rt.prepare(ctx, req, pkg.CodeFetchBadRequest, &body, "limit")
	if err != nil {
		return rt.fail(req, pkg.CodeFetchBadRequest, err)
	}

	result, err := rt.emotes.Fetch(ctx, req.ConnectionID, claims.Subject, body.Limit)
	if err != nil {
		return rt.fail(req, pkg.CodeFetchQueryFailed, err)
	}
	return pkg.OK(req.Action, req.RequestID, result)
}

// delete_emote
//
//	{ "emote_id": "..." }
func (rt *Router) deleteEmote(ctx context.Context, req ws.Request) pkg.ActionResponse {
	var body models.DeleteEmoteRequest
	claims, err := rt.prepare(ctx, req, pkg.CodeDeleteBadRequest, &body, "emote_id")
	if err != nil {
		return rt.fail(req, pkg.CodeDeleteBadRequest, err)
	}

	if err := rt.emotes.Delete(ctx, req.ConnectionID, claims.Subject, body.EmoteID); err != nil {
		return rt.fail(req, pkg.CodeDeleteStoreFailed, err)
	}
	return pkg.OK(req.Action, req.RequestID, map[string]string{"emote_id": body.EmoteID})
}

// prepare, bir action'ın ortak ön adımlarını çalıştırır: alan kontrolü,
// token doğrulaması ve body decode. Başarılıysa token claim'lerini döner.
func (rt *Router) prepare(ctx context.Context, req ws.Request, badRequestCode string, dst any, required ...string) (*models.IdentityClaims, error) {
	if isInvalidRequest(req, required...) {
		return nil, pkg.Coded(badRequestCode, pkg.ErrBadRequest, fmt.Errorf("missing required fields for %s", req.Action))
	}

	claims, err := rt.connections.Authenticate(ctx, req.Authorization)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(req.Body, dst); err != nil {
		return nil, pkg.Coded(badRequestCode, pkg.ErrBadRequest, err)
	}
	return claims, nil
}

// fail, hatayı loglar ve action yanıtına çevirir.
// CodedError olmayan hatalar fallbackCode ile 500 döner.
func (rt *Router) fail(req ws.Request, fallbackCode string, err error) pkg.ActionResponse {
	resp := pkg.ResponseFromError(req.Action, req.RequestID, fallbackCode, err)
	log.Printf("[router] %s failed for conn %s: status=%d code=%s: %v",
		req.Action, req.ConnectionID, resp.StatusCode, resp.Error, err)
	return resp
}
