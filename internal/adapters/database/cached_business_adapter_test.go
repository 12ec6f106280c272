package database_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bizfinder/discovery/internal/adapters/database"
	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/providers"
	apperrors "github.com/bizfinder/discovery/pkg/errors"
	"github.com/bizfinder/discovery/tests/mocks"
)

func TestCachedBusinessAdapter_GetByID_HitSkipsRepository(t *testing.T) {
	repo := mocks.NewMockBusinessRepository(t)
	cache := mocks.NewMockCacheProvider(t)
	adapter := database.NewCachedBusinessAdapter(repo, cache, nil)

	data, err := json.Marshal(&entities.Business{ID: "biz-1", Name: "Cached Cafe"})
	require.NoError(t, err)
	cache.On("Get", mock.Anything, "business:biz-1").Return(data, nil).Once()

	business, err := adapter.GetByID(context.Background(), "biz-1")

	require.NoError(t, err)
	assert.Equal(t, "Cached Cafe", business.Name)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestCachedBusinessAdapter_GetByID_MissPopulatesCache(t *testing.T) {
	repo := mocks.NewMockBusinessRepository(t)
	cache := mocks.NewMockCacheProvider(t)
	adapter := database.NewCachedBusinessAdapter(repo, cache, nil)

	cache.On("Get", mock.Anything, "business:biz-1").Return(nil, providers.ErrCacheMiss).Once()
	repo.On("GetByID", mock.Anything, "biz-1").Return(&entities.Business{ID: "biz-1", Name: "Fresh"}, nil).Once()
	cache.On("Set", mock.Anything, "business:biz-1", mock.Anything, 300).Return(nil).Once()

	business, err := adapter.GetByID(context.Background(), "biz-1")

	require.NoError(t, err)
	assert.Equal(t, "Fresh", business.Name)
}

func TestCachedBusinessAdapter_GetByID_NotFoundIsNotCached(t *testing.T) {
	repo := mocks.NewMockBusinessRepository(t)
	cache := mocks.NewMockCacheProvider(t)
	adapter := database.NewCachedBusinessAdapter(repo, cache, nil)

	cache.On("Get", mock.Anything, "business:missing").Return(nil, providers.ErrCacheMiss).Once()
	repo.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NewNotFoundError("business not found")).Once()

	_, err := adapter.GetByID(context.Background(), "missing")

	assert.True(t, apperrors.IsNotFound(err))
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedBusinessAdapter_UpdateEvicts(t *testing.T) {
	repo := mocks.NewMockBusinessRepository(t)
	cache := mocks.NewMockCacheProvider(t)
	adapter := database.NewCachedBusinessAdapter(repo, cache, nil)

	business := &entities.Business{ID: "biz-1"}
	repo.On("Update", mock.Anything, business).Return(nil).Once()
	cache.On("Delete", mock.Anything, "business:biz-1").Return(nil).Once()

	require.NoError(t, adapter.Update(context.Background(), business))
}

func TestCachedBusinessAdapter_UpdateRatingAggregate_EvictsOnConflict(t *testing.T) {
	repo := mocks.NewMockBusinessRepository(t)
	cache := mocks.NewMockCacheProvider(t)
	adapter := database.NewCachedBusinessAdapter(repo, cache, nil)

	aggregate := entities.RatingAggregate{Rating: 4, ReviewCount: 2}
	repo.On("UpdateRatingAggregate", mock.Anything, "biz-1", aggregate, int64(3)).
		Return(apperrors.NewConflictError("version changed")).Once()
	cache.On("Delete", mock.Anything, "business:biz-1").Return(nil).Once()

	err := adapter.UpdateRatingAggregate(context.Background(), "biz-1", aggregate, 3)

	assert.True(t, apperrors.IsConflict(err))
}

func TestCachedBusinessAdapter_UpdateRatingAggregate_KeepsCacheOnOtherErrors(t *testing.T) {
	repo := mocks.NewMockBusinessRepository(t)
	cache := mocks.NewMockCacheProvider(t)
	adapter := database.NewCachedBusinessAdapter(repo, cache, nil)

	aggregate := entities.RatingAggregate{Rating: 4, ReviewCount: 2}
	repo.On("UpdateRatingAggregate", mock.Anything, "biz-1", aggregate, int64(3)).
		Return(apperrors.NewInternalError("db down", nil)).Once()

	err := adapter.UpdateRatingAggregate(context.Background(), "biz-1", aggregate, 3)

	assert.Error(t, err)
	cache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
