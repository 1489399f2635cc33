package service

import (
	"context"
	"fmt"
	"time"

	"github.com/JerraForge/hydroponic-backend/internal/domain"
	"github.com/JerraForge/hydroponic-backend/internal/metrics"
	"github.com/JerraForge/hydroponic-backend/internal/models"
	"github.com/JerraForge/hydroponic-backend/internal/repository"

	"go.uber.org/zap"
)

// DefaultExportMaxRows upper bound of rows written by an export.
const DefaultExportMaxRows = 10000

// MeasurementService ownership-scoped measurement reads.
type MeasurementService interface {
	// QueryMeasurements one page of the filtered, newest-first measurement list.
	QueryMeasurements(ctx context.Context, req QueryMeasurementsRequest) (*QueryMeasurementsResponse, error)
	// ExportMeasurements the whole filtered list (capped), with the displayed columns.
	ExportMeasurements(ctx context.Context, req QueryMeasurementsRequest) (*ExportMeasurementsResponse, error)
}

// MeasurementServiceConfig read-path tuning.
type MeasurementServiceConfig struct {
	PageSize      int            // default 10
	Location      *time.Location // calendar-date filters are evaluated here; default UTC
	ExportMaxRows int            // default 10000
}

// QueryMeasurementsRequest filters are already parsed; parsing never fails.
type QueryMeasurementsRequest struct {
	Identity domain.Identity
	SystemID string
	Filter   models.FilterSpec
}

// QueryMeasurementsResponse page plus the state needed to render it.
type QueryMeasurementsResponse struct {
	System *domain.System
	Page   *models.Page
	Filter models.FilterSpec
}

// ExportMeasurementsResponse rows newest first; Columns are the displayed kinds.
type ExportMeasurementsResponse struct {
	System    *domain.System
	Columns   []domain.MeasurementKind
	Rows      []*domain.Measurement
	Total     int
	Truncated bool
}

type measurementService struct {
	guard        *AccessGuard
	measurements repository.MeasurementsRepository
	cfg          MeasurementServiceConfig
	logger       *zap.Logger
}

func NewMeasurementService(guard *AccessGuard, measurements repository.MeasurementsRepository, cfg MeasurementServiceConfig, logger *zap.Logger) MeasurementService {
	if cfg.PageSize <= 0 {
		cfg.PageSize = models.DefaultPageSize
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.ExportMaxRows <= 0 {
		cfg.ExportMaxRows = DefaultExportMaxRows
	}
	return &measurementService{
		guard:        guard,
		measurements: measurements,
		cfg:          cfg,
		logger:       logger,
	}
}

func (s *measurementService) QueryMeasurements(ctx context.Context, req QueryMeasurementsRequest) (*QueryMeasurementsResponse, error) {
	system, err := s.guard.Authorize(ctx, req.Identity, req.SystemID)
	if err != nil {
		return nil, err
	}

	seq := s.measurements.QueryMeasurements(repository.BuildMeasurementQuery(system, req.Filter, s.cfg.Location))
	page, err := models.Paginate(ctx, seq, req.Filter.Page, s.cfg.PageSize)
	if err != nil {
		s.logger.Error("QueryMeasurements failed",
			zap.String("system_id", system.SystemID),
			zap.Int("page", req.Filter.Page),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to query measurements: %w", err)
	}

	metrics.IncPageServed()
	return &QueryMeasurementsResponse{
		System: system,
		Page:   page,
		Filter: req.Filter,
	}, nil
}

func (s *measurementService) ExportMeasurements(ctx context.Context, req QueryMeasurementsRequest) (*ExportMeasurementsResponse, error) {
	system, err := s.guard.Authorize(ctx, req.Identity, req.SystemID)
	if err != nil {
		return nil, err
	}

	seq := s.measurements.QueryMeasurements(repository.BuildMeasurementQuery(system, req.Filter, s.cfg.Location))
	total, err := seq.Count(ctx)
	if err != nil {
		s.logger.Error("ExportMeasurements count failed", zap.String("system_id", system.SystemID), zap.Error(err))
		return nil, fmt.Errorf("failed to count measurements: %w", err)
	}

	limit := total
	if limit > s.cfg.ExportMaxRows {
		limit = s.cfg.ExportMaxRows
	}
	rows := []*domain.Measurement{}
	if limit > 0 {
		rows, err = seq.Slice(ctx, 0, limit)
		if err != nil {
			s.logger.Error("ExportMeasurements slice failed", zap.String("system_id", system.SystemID), zap.Error(err))
			return nil, fmt.Errorf("failed to load measurements: %w", err)
		}
	}

	return &ExportMeasurementsResponse{
		System:    system,
		Columns:   req.Filter.ShownKinds(),
		Rows:      rows,
		Total:     total,
		Truncated: total > limit,
	}, nil
}
