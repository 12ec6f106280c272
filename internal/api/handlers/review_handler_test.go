package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/bizfinder/discovery/internal/api/handlers"
	"github.com/bizfinder/discovery/internal/application/services"
	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/repositories"
	apperrors "github.com/bizfinder/discovery/pkg/errors"
)

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) Create(ctx context.Context, businessID string, input services.ReviewInput) (*entities.Review, error) {
	args := m.Called(ctx, businessID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Review), args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, id string, patch services.ReviewPatch) (*entities.Review, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Review), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReviewService) ListByBusiness(ctx context.Context, businessID string, filter repositories.ReviewFilter) ([]*entities.Review, error) {
	args := m.Called(ctx, businessID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Review), args.Error(1)
}

func TestReviewHandler_ListReviews_DefaultsPageSize(t *testing.T) {
	reviews := new(MockReviewService)
	handler := handlers.NewReviewHandler(reviews)

	reviews.On("ListByBusiness", mock.Anything, "b1", repositories.ReviewFilter{TopLevelOnly: true, Limit: 20}).
		Return([]*entities.Review{{ID: "r1", BusinessID: "b1", Rating: 4}}, nil).Once()

	rec := serve("GET /api/businesses/{id}/reviews", handler.ListReviews,
		httptest.NewRequest(http.MethodGet, "/api/businesses/b1/reviews?topLevelOnly=true", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
	reviews.AssertExpectations(t)
}

func TestReviewHandler_CreateReview(t *testing.T) {
	reviews := new(MockReviewService)
	handler := handlers.NewReviewHandler(reviews)

	reviews.On("Create", mock.Anything, "b1", services.ReviewInput{AuthorID: "u1", Rating: 5, Text: "Lovely"}).
		Return(&entities.Review{ID: "r1", BusinessID: "b1", Rating: 5}, nil).Once()

	rec := serve("POST /api/businesses/{id}/reviews", handler.CreateReview,
		httptest.NewRequest(http.MethodPost, "/api/businesses/b1/reviews",
			strings.NewReader(`{"author_id":"u1","rating":5,"text":"Lovely"}`)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	reviews.AssertExpectations(t)
}

func TestReviewHandler_CreateReview_ValidationError(t *testing.T) {
	reviews := new(MockReviewService)
	handler := handlers.NewReviewHandler(reviews)

	reviews.On("Create", mock.Anything, "b1", mock.Anything).
		Return(nil, apperrors.NewValidationError("rating must be between 1 and 5")).Once()

	rec := serve("POST /api/businesses/{id}/reviews", handler.CreateReview,
		httptest.NewRequest(http.MethodPost, "/api/businesses/b1/reviews", strings.NewReader(`{"rating":9}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "rating must be between 1 and 5")
}

func TestReviewHandler_UpdateReview_Conflict(t *testing.T) {
	reviews := new(MockReviewService)
	handler := handlers.NewReviewHandler(reviews)

	reviews.On("Update", mock.Anything, "r1", mock.Anything).
		Return(nil, apperrors.NewConflictError("business was modified concurrently")).Once()

	rec := serve("PATCH /api/reviews/{id}", handler.UpdateReview,
		httptest.NewRequest(http.MethodPatch, "/api/reviews/r1", strings.NewReader(`{"text":"edited"}`)))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReviewHandler_DeleteReview(t *testing.T) {
	reviews := new(MockReviewService)
	handler := handlers.NewReviewHandler(reviews)

	reviews.On("Delete", mock.Anything, "r1").Return(nil).Once()

	rec := serve("DELETE /api/reviews/{id}", handler.DeleteReview,
		httptest.NewRequest(http.MethodDelete, "/api/reviews/r1", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	reviews.AssertExpectations(t)
}
