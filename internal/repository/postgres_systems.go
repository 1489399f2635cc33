package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JerraForge/hydroponic-backend/internal/domain"

	"github.com/google/uuid"
)

// PostgresSystemsRepo hydroponic_systems on PostgreSQL.
type PostgresSystemsRepo struct {
	db *sql.DB
}

func NewPostgresSystemsRepo(db *sql.DB) *PostgresSystemsRepo {
	return &PostgresSystemsRepo{db: db}
}

var _ SystemsRepository = (*PostgresSystemsRepo)(nil)

func (r *PostgresSystemsRepo) CreateSystem(ctx context.Context, s *domain.System) error {
	query := `
		INSERT INTO hydroponic_systems (owner_id, name, location)
		VALUES ($1, $2, $3)
		RETURNING system_id::text, created_at
	`
	err := r.db.QueryRowContext(ctx, query, string(s.OwnerID), s.Name, nullString(s.Location)).
		Scan(&s.SystemID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert hydroponic system: %w", err)
	}
	return nil
}

func (r *PostgresSystemsRepo) GetSystem(ctx context.Context, systemID string) (*domain.System, error) {
	// a malformed id can never exist; avoid the uuid cast error
	if _, err := uuid.Parse(systemID); err != nil {
		return nil, ErrNotFound
	}

	query := `
		SELECT system_id::text, owner_id, name, location, created_at
		FROM hydroponic_systems
		WHERE system_id = $1
	`
	s, err := scanSystem(r.db.QueryRowContext(ctx, query, systemID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get hydroponic system: %w", err)
	}
	return s, nil
}

func (r *PostgresSystemsRepo) ListSystemsByOwner(ctx context.Context, owner domain.Identity) ([]*domain.System, error) {
	query := `
		SELECT system_id::text, owner_id, name, location, created_at
		FROM hydroponic_systems
		WHERE owner_id = $1
		ORDER BY created_at DESC, system_id
	`
	rows, err := r.db.QueryContext(ctx, query, string(owner))
	if err != nil {
		return nil, fmt.Errorf("failed to list hydroponic systems: %w", err)
	}
	defer rows.Close()

	out := []*domain.System{}
	for rows.Next() {
		s, err := scanSystem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hydroponic system: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hydroponic systems: %w", err)
	}
	return out, nil
}

func (r *PostgresSystemsRepo) DeleteSystem(ctx context.Context, systemID string) error {
	if _, err := uuid.Parse(systemID); err != nil {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM hydroponic_systems WHERE system_id = $1`, systemID)
	if err != nil {
		return fmt.Errorf("failed to delete hydroponic system: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSystem(row rowScanner) (*domain.System, error) {
	var s domain.System
	var owner string
	var location sql.NullString
	if err := row.Scan(&s.SystemID, &owner, &s.Name, &location, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.OwnerID = domain.Identity(owner)
	if location.Valid {
		s.Location = location.String
	}
	return &s, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
