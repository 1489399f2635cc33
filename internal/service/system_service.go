package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/JerraForge/hydroponic-backend/internal/domain"
	"github.com/JerraForge/hydroponic-backend/internal/repository"

	"go.uber.org/zap"
)

const (
	maxSystemNameLen     = 100
	maxSystemLocationLen = 255
)

// SystemService hydroponic system management for the owning identity.
type SystemService interface {
	CreateSystem(ctx context.Context, req CreateSystemRequest) (*domain.System, error)
	// ListSystems newest first.
	ListSystems(ctx context.Context, identity domain.Identity) ([]*domain.System, error)
	GetSystem(ctx context.Context, identity domain.Identity, systemID string) (*domain.System, error)
	// DeleteSystem also removes every measurement of the system.
	DeleteSystem(ctx context.Context, identity domain.Identity, systemID string) error
}

// CreateSystemRequest new system owned by Identity.
type CreateSystemRequest struct {
	Identity domain.Identity
	Name     string // required
	Location string
}

type systemService struct {
	systems repository.SystemsRepository
	guard   *AccessGuard
	logger  *zap.Logger
}

func NewSystemService(systems repository.SystemsRepository, guard *AccessGuard, logger *zap.Logger) SystemService {
	return &systemService{
		systems: systems,
		guard:   guard,
		logger:  logger,
	}
}

func (s *systemService) CreateSystem(ctx context.Context, req CreateSystemRequest) (*domain.System, error) {
	if req.Identity == "" {
		return nil, ErrUnauthenticated
	}

	name := strings.TrimSpace(req.Name)
	location := strings.TrimSpace(req.Location)
	if name == "" {
		return nil, newValidationError("name", "name is required")
	}
	if utf8.RuneCountInString(name) > maxSystemNameLen {
		return nil, newValidationError("name", "must be at most %d characters", maxSystemNameLen)
	}
	if utf8.RuneCountInString(location) > maxSystemLocationLen {
		return nil, newValidationError("location", "must be at most %d characters", maxSystemLocationLen)
	}

	system := &domain.System{Name: name, Location: location, OwnerID: req.Identity}
	if err := s.systems.CreateSystem(ctx, system); err != nil {
		s.logger.Error("CreateSystem failed", zap.String("owner_id", string(req.Identity)), zap.Error(err))
		return nil, translateRepoError(err, "create hydroponic system")
	}

	s.logger.Info("Hydroponic system created",
		zap.String("system_id", system.SystemID),
		zap.String("owner_id", string(req.Identity)),
	)
	return system, nil
}

func (s *systemService) ListSystems(ctx context.Context, identity domain.Identity) ([]*domain.System, error) {
	if identity == "" {
		return nil, ErrUnauthenticated
	}
	systems, err := s.systems.ListSystemsByOwner(ctx, identity)
	if err != nil {
		s.logger.Error("ListSystems failed", zap.String("owner_id", string(identity)), zap.Error(err))
		return nil, translateRepoError(err, "list hydroponic systems")
	}
	return systems, nil
}

func (s *systemService) GetSystem(ctx context.Context, identity domain.Identity, systemID string) (*domain.System, error) {
	return s.guard.Authorize(ctx, identity, systemID)
}

func (s *systemService) DeleteSystem(ctx context.Context, identity domain.Identity, systemID string) error {
	system, err := s.guard.Authorize(ctx, identity, systemID)
	if err != nil {
		return err
	}

	// a concurrent delete surfaces as ErrNotFound here
	if err := s.systems.DeleteSystem(ctx, system.SystemID); err != nil {
		if !IsNotFound(err) {
			s.logger.Error("DeleteSystem failed", zap.String("system_id", system.SystemID), zap.Error(err))
		}
		return translateRepoError(err, "delete hydroponic system")
	}

	s.logger.Info("Hydroponic system deleted",
		zap.String("system_id", system.SystemID),
		zap.String("owner_id", string(identity)),
	)
	return nil
}
