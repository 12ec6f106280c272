package handlers

import (
	"context"
	"net/http"

	"github.com/bizfinder/discovery/internal/application/services"
	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/repositories"
)

// ReviewService manages reviews
type ReviewService interface {
	Create(ctx context.Context, businessID string, input services.ReviewInput) (*entities.Review, error)
	Update(ctx context.Context, id string, patch services.ReviewPatch) (*entities.Review, error)
	Delete(ctx context.Context, id string) error
	ListByBusiness(ctx context.Context, businessID string, filter repositories.ReviewFilter) ([]*entities.Review, error)
}

const defaultReviewPageSize = 20

// ReviewHandler handles review-related HTTP requests
type ReviewHandler struct {
	reviews ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// ListReviews handles GET /api/businesses/{id}/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	filter := repositories.ReviewFilter{
		TopLevelOnly: q.boolean("topLevelOnly"),
		Limit:        q.integer("limit"),
		Offset:       q.integer("offset"),
	}
	if q.err != nil {
		respondWithAppError(w, r, q.err)
		return
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultReviewPageSize
	}
	if filter.Offset < 0 {
		respondWithError(w, http.StatusBadRequest, "offset must not be negative")
		return
	}

	reviews, err := h.reviews.ListByBusiness(r.Context(), r.PathValue("id"), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"reviews": reviews,
		"count":   len(reviews),
	})
}

// CreateReview handles POST /api/businesses/{id}/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var input services.ReviewInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	review, err := h.reviews.Create(r.Context(), r.PathValue("id"), input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, review)
}

// UpdateReview handles PATCH /api/reviews/{id}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	var patch services.ReviewPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	review, err := h.reviews.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, review)
}

// DeleteReview handles DELETE /api/reviews/{id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.reviews.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
