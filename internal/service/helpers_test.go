package service

import (
	"context"
	"testing"
	"time"

	"github.com/JerraForge/hydroponic-backend/internal/domain"
	"github.com/JerraForge/hydroponic-backend/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	alice domain.Identity = "alice"
	bob   domain.Identity = "bob"
)

type fixture struct {
	store        *repository.MemoryStore
	guard        *AccessGuard
	systems      SystemService
	measurements MeasurementService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	guard := NewAccessGuard(store)
	logger := zap.NewNop()
	return &fixture{
		store:        store,
		guard:        guard,
		systems:      NewSystemService(store, guard, logger),
		measurements: NewMeasurementService(guard, store, MeasurementServiceConfig{}, logger),
	}
}

func (f *fixture) createSystem(t *testing.T, owner domain.Identity, name string) *domain.System {
	t.Helper()
	s, err := f.systems.CreateSystem(context.Background(), CreateSystemRequest{Identity: owner, Name: name})
	require.NoError(t, err)
	return s
}

// seedDays inserts perDay[i] readings on 2024-05-(i+1), one hour apart, pH climbing by 0.2.
func (f *fixture) seedDays(t *testing.T, systemID string, perDay ...int) {
	t.Helper()
	for d, n := range perDay {
		for i := 0; i < n; i++ {
			ts := time.Date(2024, 5, d+1, 1+i, 0, 0, 0, time.UTC)
			_, err := f.store.InsertMeasurements(context.Background(), systemID, ts, []domain.Readings{
				{PH: 5.5 + 0.2*float64(i), Temperature: 18 + float64(i), TDS: 400 + 50*float64(i)},
			})
			require.NoError(t, err)
		}
	}
}

type recordingPublisher struct {
	calls [][]*domain.Measurement
	err   error
}

func (p *recordingPublisher) PublishMeasurementsCreated(_ context.Context, _ *domain.System, ms []*domain.Measurement) error {
	p.calls = append(p.calls, ms)
	return p.err
}
