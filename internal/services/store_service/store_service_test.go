package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"presto/internal/domain/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) GetStore(ctx context.Context, userID uuid.UUID) (models.Store, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Store), args.Error(1)
}

func (m *MockStoreRepository) ReplaceStore(ctx context.Context, userID uuid.UUID, store models.Store) error {
	args := m.Called(ctx, userID, store)
	return args.Error(0)
}

var testCtx = context.Background()

func TestGetStore_CachesRepositoryReads(t *testing.T) {
	repo := new(MockStoreRepository)
	service := NewStoreService(slog.Default(), repo)

	userID := uuid.New()
	stored := models.Store{
		"p1": {ID: "p1", Name: "Talk", CreateAt: 1, Slides: []models.Slide{{ID: "s1"}}},
	}

	repo.On("GetStore", testCtx, userID).Return(stored, nil).Once()

	first, err := service.GetStore(testCtx, userID)
	require.NoError(t, err)
	assert.Equal(t, stored, first)

	// second read must come from the cache
	second, err := service.GetStore(testCtx, userID)
	require.NoError(t, err)
	assert.Equal(t, stored, second)

	repo.AssertExpectations(t)
}

func TestGetStore_CachedCopyIsIsolated(t *testing.T) {
	repo := new(MockStoreRepository)
	service := NewStoreService(slog.Default(), repo)

	userID := uuid.New()
	repo.On("GetStore", testCtx, userID).Return(models.Store{
		"p1": {ID: "p1", Name: "Talk", Slides: []models.Slide{{ID: "s1"}}},
	}, nil).Once()

	first, err := service.GetStore(testCtx, userID)
	require.NoError(t, err)

	p := first["p1"]
	p.Name = "Mutated"
	first["p1"] = p

	second, err := service.GetStore(testCtx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Talk", second["p1"].Name)
}

func TestReplaceStore_RefreshesCache(t *testing.T) {
	repo := new(MockStoreRepository)
	service := NewStoreService(slog.Default(), repo)

	userID := uuid.New()
	next := models.Store{
		"p2": {ID: "p2", Name: "New deck", CreateAt: 2, Slides: []models.Slide{{ID: "s2"}}},
	}

	repo.On("ReplaceStore", testCtx, userID, next).Return(nil).Once()

	require.NoError(t, service.ReplaceStore(testCtx, userID, next))

	// read-after-write must not touch the repository
	got, err := service.GetStore(testCtx, userID)
	require.NoError(t, err)
	assert.Equal(t, next, got)

	repo.AssertExpectations(t)
}

func TestReplaceStore_NilBecomesEmpty(t *testing.T) {
	repo := new(MockStoreRepository)
	service := NewStoreService(slog.Default(), repo)

	userID := uuid.New()
	repo.On("ReplaceStore", testCtx, userID, models.Store{}).Return(nil).Once()

	require.NoError(t, service.ReplaceStore(testCtx, userID, nil))

	repo.AssertExpectations(t)
}

func TestReplaceStore_RepositoryFailure(t *testing.T) {
	repo := new(MockStoreRepository)
	service := NewStoreService(slog.Default(), repo)

	userID := uuid.New()
	st := models.Store{"p1": {ID: "p1"}}

	repo.On("ReplaceStore", testCtx, userID, st).Return(errors.New("connection refused")).Once()

	err := service.ReplaceStore(testCtx, userID, st)

	assert.Error(t, err)
	repo.AssertExpectations(t)
}
