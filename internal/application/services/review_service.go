package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/repositories"
	"github.com/bizfinder/discovery/internal/infrastructure/observability"
	apperrors "github.com/bizfinder/discovery/pkg/errors"
)

const (
	minReviewRating = 1
	maxReviewRating = 5
)

// ReviewInput carries a new review or reply
type ReviewInput struct {
	AuthorID       string  `json:"author_id"`
	Rating         float64 `json:"rating"`
	Text           string  `json:"text"`
	ParentReviewID *string `json:"parent_review_id,omitempty"`
}

// ReviewPatch is a partial review update
type ReviewPatch struct {
	Rating *float64 `json:"rating,omitempty"`
	Text   *string  `json:"text,omitempty"`
}

// ReviewService manages reviews and keeps business ratings in step with them
type ReviewService struct {
	businessRepo repositories.BusinessRepository
	reviewRepo   repositories.ReviewRepository
	aggregator   *RatingAggregator
	now          func() time.Time
}

// NewReviewService creates a new review service
func NewReviewService(
	businessRepo repositories.BusinessRepository,
	reviewRepo repositories.ReviewRepository,
	aggregator *RatingAggregator,
) *ReviewService {
	return &ReviewService{
		businessRepo: businessRepo,
		reviewRepo:   reviewRepo,
		aggregator:   aggregator,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create adds a review or a reply to a business
func (s *ReviewService) Create(ctx context.Context, businessID string, input ReviewInput) (*entities.Review, error) {
	ctx, span := observability.StartSpan(ctx, "ReviewService.Create")
	defer span.End()

	if _, err := s.businessRepo.GetByID(ctx, businessID); err != nil {
		return nil, err
	}

	review := &entities.Review{
		ID:         uuid.NewString(),
		BusinessID: businessID,
		AuthorID:   input.AuthorID,
		Rating:     input.Rating,
		Text:       strings.TrimSpace(input.Text),
	}

	if input.ParentReviewID != nil && strings.TrimSpace(*input.ParentReviewID) != "" {
		parentID := strings.TrimSpace(*input.ParentReviewID)
		parent, err := s.reviewRepo.GetByID(ctx, parentID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return nil, apperrors.NewValidationErrorf("parent review %s does not exist", parentID)
			}
			return nil, err
		}
		if parent.BusinessID != businessID {
			return nil, apperrors.NewValidationError("parent review belongs to another business")
		}
		if review.Text == "" {
			return nil, apperrors.NewValidationError("reply text is required")
		}
		review.ParentReviewID = &parentID
		review.Rating = 0
	} else if err := validateRating(input.Rating); err != nil {
		return nil, err
	}

	now := s.now()
	review.CreatedAt = now
	review.UpdatedAt = now

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	if err := s.recompute(ctx, businessID); err != nil {
		return nil, err
	}
	return review, nil
}

// Update changes the text or rating of a review
func (s *ReviewService) Update(ctx context.Context, id string, patch ReviewPatch) (*entities.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Rating != nil {
		if review.IsReply() {
			return nil, apperrors.NewValidationError("replies carry no rating")
		}
		if err := validateRating(*patch.Rating); err != nil {
			return nil, err
		}
		review.Rating = *patch.Rating
	}
	if patch.Text != nil {
		review.Text = strings.TrimSpace(*patch.Text)
	}
	review.UpdatedAt = s.now()

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	if err := s.recompute(ctx, review.BusinessID); err != nil {
		return nil, err
	}
	return review, nil
}

// Delete removes a review together with its replies
func (s *ReviewService) Delete(ctx context.Context, id string) error {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		return err
	}
	return s.recompute(ctx, review.BusinessID)
}

// ListByBusiness lists reviews of a business, newest first
func (s *ReviewService) ListByBusiness(ctx context.Context, businessID string, filter repositories.ReviewFilter) ([]*entities.Review, error) {
	if _, err := s.businessRepo.GetByID(ctx, businessID); err != nil {
		return nil, err
	}
	return s.reviewRepo.ListByBusiness(ctx, businessID, filter)
}

// recompute refreshes the aggregate after a review write that already succeeded
func (s *ReviewService) recompute(ctx context.Context, businessID string) error {
	if err := s.aggregator.RecomputeRating(ctx, businessID); err != nil {
		observability.LoggerFromContext(ctx).Error().
			Err(err).
			Str("business_id", businessID).
			Msg("review saved but rating recompute failed")
		return apperrors.NewInternalError("failed to recompute business rating", err)
	}
	return nil
}

func validateRating(rating float64) error {
	if rating < minReviewRating || rating > maxReviewRating {
		return apperrors.NewValidationErrorf("rating must be between %d and %d", minReviewRating, maxReviewRating)
	}
	return nil
}
