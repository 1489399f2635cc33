package repository

import (
	"context"
	"errors"
	"time"

	"github.com/JerraForge/hydroponic-backend/internal/domain"
	"github.com/JerraForge/hydroponic-backend/internal/models"
)

// ErrNotFound the referenced row does not exist (or vanished mid-request).
var ErrNotFound = errors.New("not found")

// SystemsRepository hydroponic_systems access.
type SystemsRepository interface {
	// CreateSystem assigns SystemID and CreatedAt on s.
	CreateSystem(ctx context.Context, s *domain.System) error
	// GetSystem returns ErrNotFound for unknown or malformed ids.
	GetSystem(ctx context.Context, systemID string) (*domain.System, error)
	// ListSystemsByOwner newest first.
	ListSystemsByOwner(ctx context.Context, owner domain.Identity) ([]*domain.System, error)
	// DeleteSystem removes the system and, by cascade, its measurements.
	DeleteSystem(ctx context.Context, systemID string) error
}

// MeasurementsRepository measurements access. Rows are append-only.
type MeasurementsRepository interface {
	// InsertMeasurements stores all readings with timestamp ts, atomically.
	// Returns ErrNotFound when the system no longer exists.
	InsertMeasurements(ctx context.Context, systemID string, ts time.Time, readings []domain.Readings) ([]*domain.Measurement, error)
	// QueryMeasurements returns the lazy ordered sequence described by q.
	QueryMeasurements(q MeasurementQuery) models.MeasurementSequence
}
