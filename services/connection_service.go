package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akinalp/wordless/models"
	"github.com/akinalp/wordless/pkg"
	"github.com/akinalp/wordless/repository"
)

// ConnectionCodes, VerifyConnection'ın hangi action adına çalıştığını belirler.
// Aynı kontrol her action'da farklı kodla raporlanır (ör: WSK-42 / EMT-13).
type ConnectionCodes struct {
	NotFound string
	Failed   string
}

// ConnectionService, bağlantı yaşam döngüsü ve bağlantı doğrulaması.
//
// ws.Handler bu service'i ws.ConnectionLifecycle olarak kullanır;
// action service'leri ise her istekte VerifyConnection çağırır.
type ConnectionService interface {
	// Authenticate, "Bearer <jwt>" değerini doğrular.
	Authenticate(ctx context.Context, bearer string) (*models.IdentityClaims, error)
	// Register, yeni bağlantıyı registry'ye yazar. Hata → WSK-02.
	Register(ctx context.Context, connectionID, subject string) error
	// Disconnect, bağlantıyı registry'den siler. Hata → WSK-92.
	Disconnect(ctx context.Context, connectionID string) error
	// VerifyConnection, bağlantının registry'de olduğunu ve token subject'i ile
	// kurulduğunu kontrol eder. Subject uyuşmazlığı her zaman AUN-05'tir.
	VerifyConnection(ctx context.Context, connectionID, subject string, codes ConnectionCodes) (*models.Connection, error)
}

type connectionService struct {
	connRepo repository.ConnectionRepository
	verifier TokenVerifier
	now      func() time.Time
}

// NewConnectionService, constructor.
func NewConnectionService(connRepo repository.ConnectionRepository, verifier TokenVerifier) ConnectionService {
	return &connectionService{
		connRepo: connRepo,
		verifier: verifier,
		now:      time.Now,
	}
}

func (s *connectionService) Authenticate(ctx context.Context, bearer string) (*models.IdentityClaims, error) {
	token, err := BearerToken(bearer)
	if err != nil {
		return nil, err
	}
	return s.verifier.Verify(ctx, token)
}

func (s *connectionService) Register(ctx context.Context, connectionID, subject string) error {
	if connectionID == "" || subject == "" {
		return pkg.Coded(pkg.CodeConnectBadRequest, pkg.ErrBadRequest, nil)
	}

	conn := &models.Connection{
		ConnectionID:  connectionID,
		Subject:       subject,
		EstablishedAt: s.now().UTC(),
	}
	if err := s.connRepo.Put(ctx, conn); err != nil {
		return pkg.Coded(pkg.CodeConnectRegistryFailed, pkg.ErrInternal, err)
	}
	return nil
}

// Disconnect idempotent'tir: registry'de olmayan bir bağlantıyı silmek hata değildir.
func (s *connectionService) Disconnect(ctx context.Context, connectionID string) error {
	if connectionID == "" {
		return pkg.Coded(pkg.CodeDisconnectBadRequest, pkg.ErrBadRequest, nil)
	}
	if err := s.connRepo.Delete(ctx, connectionID); err != nil {
		return pkg.Coded(pkg.CodeDisconnectFailed, pkg.ErrInternal, err)
	}
	return nil
}

func (s *connectionService) VerifyConnection(ctx context.Context, connectionID, subject string, codes ConnectionCodes) (*models.Connection, error) {
	conn, err := s.connRepo.Get(ctx, connectionID)
	if errors.Is(err, pkg.ErrNotFound) {
		return nil, pkg.Coded(codes.NotFound, pkg.ErrNotFound, fmt.Errorf("connection %s", connectionID))
	}
	if err != nil {
		return nil, pkg.Coded(codes.Failed, pkg.ErrInternal, err)
	}

	if conn.Subject != subject {
		return nil, pkg.Coded(pkg.CodeIdentityMismatch, pkg.ErrUnauthorized,
			fmt.Errorf("connection %s belongs to another subject", connectionID))
	}
	return conn, nil
}
