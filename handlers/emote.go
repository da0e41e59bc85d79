package handlers

import (
	"net/http"
	"strconv"

	"github.com/akinalp/wordless/models"
	"github.com/akinalp/wordless/pkg"
	"github.com/akinalp/wordless/services"
)

// EmoteHandler, emote listesinin REST endpoint'i.
// Gönderme, tepki ve silme sadece WebSocket üzerinden yapılır.
type EmoteHandler struct {
	emoteService services.EmoteService
}

// NewEmoteHandler, constructor.
func NewEmoteHandler(emoteService services.EmoteService) *EmoteHandler {
	return &EmoteHandler{emoteService: emoteService}
}

// List godoc
// GET /api/emotes?limit=20
//
// En yeni silinmemiş emote'ları yazar profili ve reaction sayaçlarıyla döner.
// limit verilmezse 20; 1..100 dışı veya sayı değilse EMT-12.
func (h *EmoteHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := models.DefaultFetchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			pkg.Error(w, pkg.Coded(pkg.CodeFetchInvalidLimit, pkg.ErrBadRequest, err))
			return
		}
		limit = n
	}

	emotes, err := h.emoteService.List(r.Context(), limit)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, emotes)
}
