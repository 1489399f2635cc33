package service

import (
	"context"
	"math"
	"time"

	"github.com/JerraForge/hydroponic-backend/internal/domain"
	"github.com/JerraForge/hydroponic-backend/internal/metrics"
	"github.com/JerraForge/hydroponic-backend/internal/repository"

	"go.uber.org/zap"
)

// MaxReadingsPerIngest bound on readings accepted in one call.
const MaxReadingsPerIngest = 1000

// MeasurementPublisher announces stored measurements to downstream consumers.
type MeasurementPublisher interface {
	PublishMeasurementsCreated(ctx context.Context, system *domain.System, measurements []*domain.Measurement) error
}

// MeasurementIngestor validated, ownership-checked measurement writes.
type MeasurementIngestor interface {
	Ingest(ctx context.Context, req IngestRequest) (*IngestResponse, error)
}

// IngestRequest readings for one system.
type IngestRequest struct {
	Identity domain.Identity
	SystemID string
	Readings []domain.Readings
	Source   string // metrics.SourceHTTP or metrics.SourceMQTT
}

// IngestResponse the stored rows, in input order, all with the same timestamp.
type IngestResponse struct {
	System       *domain.System
	Measurements []*domain.Measurement
}

type measurementIngestor struct {
	guard        *AccessGuard
	measurements repository.MeasurementsRepository
	publisher    MeasurementPublisher // optional
	now          func() time.Time
	logger       *zap.Logger
}

// NewMeasurementIngestor publisher may be nil.
func NewMeasurementIngestor(guard *AccessGuard, measurements repository.MeasurementsRepository, publisher MeasurementPublisher, logger *zap.Logger) MeasurementIngestor {
	return &measurementIngestor{
		guard:        guard,
		measurements: measurements,
		publisher:    publisher,
		now:          time.Now,
		logger:       logger,
	}
}

func (s *measurementIngestor) Ingest(ctx context.Context, req IngestRequest) (*IngestResponse, error) {
	system, err := s.guard.Authorize(ctx, req.Identity, req.SystemID)
	if err != nil {
		s.reject(err)
		return nil, err
	}

	if err := validateReadings(req.Readings); err != nil {
		s.reject(err)
		return nil, err
	}

	// Postgres keeps microseconds; truncate so the response matches what a later read returns.
	ts := s.now().UTC().Truncate(time.Microsecond)

	stored, err := s.measurements.InsertMeasurements(ctx, system.SystemID, ts, req.Readings)
	if err != nil {
		err = translateRepoError(err, "insert measurements")
		if !IsNotFound(err) {
			s.logger.Error("Ingest failed",
				zap.String("system_id", system.SystemID),
				zap.Int("readings", len(req.Readings)),
				zap.Error(err),
			)
		}
		s.reject(err)
		return nil, err
	}

	metrics.AddIngested(req.Source, len(stored))
	s.logger.Debug("Measurements ingested",
		zap.String("system_id", system.SystemID),
		zap.String("source", req.Source),
		zap.Int("count", len(stored)),
	)

	if s.publisher != nil {
		if err := s.publisher.PublishMeasurementsCreated(ctx, system, stored); err != nil {
			// rows are committed; the event is best effort
			metrics.IncPublishFailure()
			s.logger.Warn("Failed to publish measurement.created",
				zap.String("system_id", system.SystemID),
				zap.Error(err),
			)
		}
	}

	return &IngestResponse{System: system, Measurements: stored}, nil
}

func (s *measurementIngestor) reject(err error) {
	switch {
	case IsNotFound(err):
		metrics.IncIngestRejected(metrics.RejectNotFound)
	case IsValidation(err):
		metrics.IncIngestRejected(metrics.RejectValidation)
	default:
		metrics.IncIngestRejected(metrics.RejectError)
	}
}

func validateReadings(readings []domain.Readings) error {
	if len(readings) == 0 {
		return newValidationError("readings", "at least one reading is required")
	}
	if len(readings) > MaxReadingsPerIngest {
		return newValidationError("readings", "at most %d readings per request", MaxReadingsPerIngest)
	}
	for i, r := range readings {
		for _, kind := range domain.AllKinds {
			v, _ := r.Value(kind)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return newValidationError(kind.Column(), "reading %d is not a finite number", i)
			}
		}
	}
	return nil
}
