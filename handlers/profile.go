package handlers

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/akinalp/wordless/models"
	"github.com/akinalp/wordless/pkg"
	"github.com/akinalp/wordless/services"
)

// ProfileHandler, çağıranın kendi profil endpoint'leri.
// Subject her zaman token'dan gelir (AuthMiddleware → context).
type ProfileHandler struct {
	profileService services.ProfileService
}

// NewProfileHandler, constructor.
func NewProfileHandler(profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// Me godoc
// GET /api/users/me
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "claims not found in context")
		return
	}

	user, err := h.profileService.Get(r.Context(), claims.Subject)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, user)
}

// Update godoc
// PUT /api/users/me
//
// Body:
//
//	{ "user_name": "ayse", "avatar_url": "https://..." }
//
// Profil yoksa oluşturulur.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "claims not found in context")
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.Error(w, pkg.Coded(pkg.CodeProfileInvalid, pkg.ErrBadRequest, err))
		return
	}

	user, err := h.profileService.Update(r.Context(), claims.Subject, req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, user)
}
