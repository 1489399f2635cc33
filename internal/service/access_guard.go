package service

import (
	"context"
	"strings"

	"github.com/JerraForge/hydroponic-backend/internal/domain"
	"github.com/JerraForge/hydroponic-backend/internal/repository"
)

// AccessGuard resolves a system for an identity. Every read and write of systems
// and measurements goes through Authorize first.
type AccessGuard struct {
	systems repository.SystemsRepository
}

func NewAccessGuard(systems repository.SystemsRepository) *AccessGuard {
	return &AccessGuard{systems: systems}
}

// Authorize returns the system when identity owns it.
// A missing system and a foreign system both yield ErrNotFound; store failures are wrapped.
func (g *AccessGuard) Authorize(ctx context.Context, identity domain.Identity, systemID string) (*domain.System, error) {
	if identity == "" {
		return nil, ErrUnauthenticated
	}
	systemID = strings.TrimSpace(systemID)
	if systemID == "" {
		return nil, ErrNotFound
	}

	system, err := g.systems.GetSystem(ctx, systemID)
	if err != nil {
		return nil, translateRepoError(err, "load hydroponic system")
	}
	if !system.OwnedBy(identity) {
		return nil, ErrNotFound
	}
	return system, nil
}
