package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/JerraForge/hydroponic-backend/internal/domain"
	"github.com/JerraForge/hydroponic-backend/internal/models"

	"github.com/google/uuid"
)

// MemoryStore backs both repositories when the DB is disabled (dev/tests).
type MemoryStore struct {
	mu           sync.RWMutex
	systems      map[string]domain.System        // systemID -> system
	measurements map[string][]domain.Measurement // systemID -> rows in insert order
	nextID       int64
	now          func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		systems:      map[string]domain.System{},
		measurements: map[string][]domain.Measurement{},
		now:          time.Now,
	}
}

var (
	_ SystemsRepository      = (*MemoryStore)(nil)
	_ MeasurementsRepository = (*MemoryStore)(nil)
)

func (r *MemoryStore) CreateSystem(_ context.Context, s *domain.System) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.SystemID = uuid.NewString()
	s.CreatedAt = r.now().UTC()
	r.systems[s.SystemID] = *s
	return nil
}

func (r *MemoryStore) GetSystem(_ context.Context, systemID string) (*domain.System, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.systems[systemID]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *MemoryStore) ListSystemsByOwner(_ context.Context, owner domain.Identity) ([]*domain.System, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.System{}
	for _, s := range r.systems {
		if s.OwnerID != owner {
			continue
		}
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].SystemID < out[j].SystemID
	})
	return out, nil
}

func (r *MemoryStore) DeleteSystem(_ context.Context, systemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.systems[systemID]; !ok {
		return ErrNotFound
	}
	delete(r.systems, systemID)
	delete(r.measurements, systemID)
	return nil
}

func (r *MemoryStore) InsertMeasurements(_ context.Context, systemID string, ts time.Time, readings []domain.Readings) ([]*domain.Measurement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.systems[systemID]; !ok {
		return nil, ErrNotFound
	}

	out := make([]*domain.Measurement, 0, len(readings))
	for _, rd := range readings {
		r.nextID++
		m := domain.Measurement{ID: r.nextID, SystemID: systemID, Timestamp: ts, Readings: rd}
		r.measurements[systemID] = append(r.measurements[systemID], m)
		out = append(out, &m)
	}
	return out, nil
}

func (r *MemoryStore) QueryMeasurements(q MeasurementQuery) models.MeasurementSequence {
	return &memMeasurementSequence{store: r, q: q}
}

// materialize returns the filtered, ordered rows as of now.
func (r *MemoryStore) materialize(q MeasurementQuery) []*domain.Measurement {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.measurements[q.SystemID]
	out := make([]*domain.Measurement, 0, len(rows))
	for i := range rows {
		m := rows[i]
		if q.Matches(&m) {
			out = append(out, &m)
		}
	}
	sortMeasurements(out)
	return out
}

// memMeasurementSequence re-evaluates the predicates on every call.
type memMeasurementSequence struct {
	store *MemoryStore
	q     MeasurementQuery
}

func (s *memMeasurementSequence) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(s.store.materialize(s.q)), nil
}

func (s *memMeasurementSequence) Slice(ctx context.Context, offset, limit int) ([]*domain.Measurement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all := s.store.materialize(s.q)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || offset >= len(all) {
		return []*domain.Measurement{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}
