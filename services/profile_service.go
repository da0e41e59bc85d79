package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/akinalp/wordless/models"
	"github.com/akinalp/wordless/pkg"
	"github.com/akinalp/wordless/repository"
)

// ProfileService, çağıranın kendi profilini okuma ve güncelleme.
// Profil her zaman token subject'i ile bulunur; başka birinin profili değiştirilemez.
type ProfileService interface {
	Get(ctx context.Context, subject string) (*models.User, error)
	// Update, profil yoksa oluşturur (yeni UUID), varsa ad ve avatar'ı günceller.
	Update(ctx context.Context, subject string, req models.UpdateProfileRequest) (*models.User, error)
}

type profileService struct {
	userRepo repository.UserRepository
}

// NewProfileService, constructor.
func NewProfileService(userRepo repository.UserRepository) ProfileService {
	return &profileService{userRepo: userRepo}
}

func (s *profileService) Get(ctx context.Context, subject string) (*models.User, error) {
	user, err := s.userRepo.GetBySubject(ctx, subject)
	if errors.Is(err, pkg.ErrNotFound) {
		return nil, pkg.Coded(pkg.CodeProfileNotFound, pkg.ErrNotFound, nil)
	}
	if err != nil {
		return nil, pkg.Coded(pkg.CodeProfileFailed, pkg.ErrInternal, err)
	}
	return user, nil
}

func (s *profileService) Update(ctx context.Context, subject string, req models.UpdateProfileRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, pkg.Coded(pkg.CodeProfileInvalid, pkg.ErrBadRequest, err)
	}

	// Upsert subject çakışmasında mevcut ID'yi korur, yeni ID sadece ilk kayıtta kullanılır
	user := &models.User{
		ID:        uuid.NewString(),
		Subject:   subject,
		UserName:  req.UserName,
		AvatarURL: req.AvatarURL,
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, pkg.Coded(pkg.CodeProfileFailed, pkg.ErrInternal, err)
	}
	return user, nil
}
