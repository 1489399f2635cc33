package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/JerraForge/hydroponic-backend/internal/domain"
	"github.com/JerraForge/hydroponic-backend/internal/models"

	"github.com/lib/pq"
)

// foreign_key_violation
const pqForeignKeyViolation = "23503"

// PostgresMeasurementsRepo measurements on PostgreSQL. Filtering, ordering,
// counting and paging are all pushed down to SQL.
type PostgresMeasurementsRepo struct {
	db *sql.DB
}

func NewPostgresMeasurementsRepo(db *sql.DB) *PostgresMeasurementsRepo {
	return &PostgresMeasurementsRepo{db: db}
}

var _ MeasurementsRepository = (*PostgresMeasurementsRepo)(nil)

func (r *PostgresMeasurementsRepo) InsertMeasurements(ctx context.Context, systemID string, ts time.Time, readings []domain.Readings) ([]*domain.Measurement, error) {
	if len(readings) == 0 {
		return []*domain.Measurement{}, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO measurements (system_id, timestamp, ph, temperature, tds)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	out := make([]*domain.Measurement, 0, len(readings))
	for _, rd := range readings {
		m := &domain.Measurement{SystemID: systemID, Timestamp: ts, Readings: rd}
		if err := tx.QueryRowContext(ctx, query, systemID, ts, rd.PH, rd.Temperature, rd.TDS).Scan(&m.ID); err != nil {
			if isForeignKeyViolation(err) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to insert measurement: %w", err)
		}
		out = append(out, m)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit measurements: %w", err)
	}
	return out, nil
}

func (r *PostgresMeasurementsRepo) QueryMeasurements(q MeasurementQuery) models.MeasurementSequence {
	return &pgMeasurementSequence{db: r.db, q: q}
}

// pgMeasurementSequence issues a fresh query per call.
type pgMeasurementSequence struct {
	db *sql.DB
	q  MeasurementQuery
}

func (s *pgMeasurementSequence) Count(ctx context.Context) (int, error) {
	args := []interface{}{}
	argN := 1
	where := s.q.whereClause(&args, &argN)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM measurements m WHERE "+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count measurements: %w", err)
	}
	return total, nil
}

func (s *pgMeasurementSequence) Slice(ctx context.Context, offset, limit int) ([]*domain.Measurement, error) {
	if limit <= 0 {
		return []*domain.Measurement{}, nil
	}
	if offset < 0 {
		offset = 0
	}

	args := []interface{}{}
	argN := 1
	where := s.q.whereClause(&args, &argN)

	query := fmt.Sprintf(`
		SELECT m.id, m.system_id::text, m.timestamp, m.ph, m.temperature, m.tds
		FROM measurements m
		WHERE %s
		ORDER BY m.timestamp DESC, m.id DESC
		LIMIT $%d OFFSET $%d
	`, where, argN, argN+1)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query measurements: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Measurement, 0, limit)
	for rows.Next() {
		var m domain.Measurement
		if err := rows.Scan(&m.ID, &m.SystemID, &m.Timestamp, &m.PH, &m.Temperature, &m.TDS); err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate measurements: %w", err)
	}
	return out, nil
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqForeignKeyViolation
}
