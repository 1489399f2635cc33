package service

import (
	"context"
	"errors"
	"testing"

	"github.com/JerraForge/hydroponic-backend/internal/domain"
	"github.com/JerraForge/hydroponic-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSystems struct {
	repository.SystemsRepository
	err error
}

func (f failingSystems) GetSystem(context.Context, string) (*domain.System, error) {
	return nil, f.err
}

func TestAccessGuard_Owner(t *testing.T) {
	f := newFixture(t)
	sys := f.createSystem(t, alice, "Greenhouse A")

	got, err := f.guard.Authorize(context.Background(), alice, sys.SystemID)
	require.NoError(t, err)
	assert.Equal(t, sys.SystemID, got.SystemID)
}

func TestAccessGuard_ForeignAndMissingLookAlike(t *testing.T) {
	f := newFixture(t)
	sys := f.createSystem(t, alice, "Greenhouse A")

	_, foreignErr := f.guard.Authorize(context.Background(), bob, sys.SystemID)
	_, missingErr := f.guard.Authorize(context.Background(), bob, "00000000-0000-0000-0000-000000000000")

	assert.ErrorIs(t, foreignErr, ErrNotFound)
	assert.ErrorIs(t, missingErr, ErrNotFound)
	assert.Equal(t, foreignErr.Error(), missingErr.Error())
}

func TestAccessGuard_EmptyInputs(t *testing.T) {
	f := newFixture(t)
	sys := f.createSystem(t, alice, "Greenhouse A")

	_, err := f.guard.Authorize(context.Background(), "", sys.SystemID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.guard.Authorize(context.Background(), alice, "  ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccessGuard_StoreFailureIsNotNotFound(t *testing.T) {
	boom := errors.New("connection refused")
	guard := NewAccessGuard(failingSystems{err: boom})

	_, err := guard.Authorize(context.Background(), alice, "6f1c2b7e-3a45-4c1e-9d2f-0a1b2c3d4e5f")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsNotFound(err))
}
