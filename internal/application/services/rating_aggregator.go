package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/providers"
	"github.com/bizfinder/discovery/internal/domain/repositories"
	"github.com/bizfinder/discovery/internal/infrastructure/observability"
	apperrors "github.com/bizfinder/discovery/pkg/errors"
	"github.com/bizfinder/discovery/pkg/retry"
)

const maxRecomputeAttempts = 5

// RatingAggregator keeps a business rating equal to the mean of its
// top-level reviews.
type RatingAggregator struct {
	businessRepo repositories.BusinessRepository
	reviewRepo   repositories.ReviewRepository
	eventBus     providers.EventBus
	metrics      *observability.Metrics
	retryConfig  retry.Config
}

// NewRatingAggregator creates a new rating aggregator. eventBus may be nil.
func NewRatingAggregator(
	businessRepo repositories.BusinessRepository,
	reviewRepo repositories.ReviewRepository,
	eventBus providers.EventBus,
	metrics *observability.Metrics,
) *RatingAggregator {
	return &RatingAggregator{
		businessRepo: businessRepo,
		reviewRepo:   reviewRepo,
		eventBus:     eventBus,
		metrics:      metrics,
		retryConfig: retry.Config{
			MaxAttempts:   maxRecomputeAttempts,
			InitialDelay:  10 * time.Millisecond,
			MaxDelay:      200 * time.Millisecond,
			BackoffFactor: 2.0,
		},
	}
}

// WithRetryConfig overrides the conflict retry policy
func (a *RatingAggregator) WithRetryConfig(cfg retry.Config) *RatingAggregator {
	a.retryConfig = cfg
	return a
}

// RecomputeRating recalculates rating and review count from every top-level
// review. The write only lands if no other writer bumped the business version
// in between; otherwise the whole computation runs again.
func (a *RatingAggregator) RecomputeRating(ctx context.Context, businessID string) error {
	ctx, span := observability.StartSpan(ctx, "RatingAggregator.RecomputeRating")
	defer span.End()
	observability.SetSpanAttributes(span, attribute.String("business.id", businessID))

	logger := observability.LoggerFromContext(ctx)
	attempts := 0
	var aggregate entities.RatingAggregate

	err := retry.DoWithLog(ctx, a.retryConfig, "rating recompute", func() error {
		attempts++
		var err error
		aggregate, err = a.recomputeOnce(ctx, businessID)
		if err != nil && !apperrors.IsConflict(err) {
			return retry.Permanent(err)
		}
		return err
	}, func(attempt int, err error, next time.Duration) {
		logger.Debug().
			Err(err).
			Str("business_id", businessID).
			Int("attempt", attempt).
			Dur("next_delay", next).
			Msg("rating aggregate write lost a race, recomputing")
	})

	if err != nil {
		observability.RecordRatingRecompute(ctx, a.metrics, outcomeOf(err), attempts)
		observability.RecordError(span, err)
		return err
	}
	observability.RecordRatingRecompute(ctx, a.metrics, "ok", attempts)

	if a.eventBus != nil {
		event := entities.NewBusinessEvent(businessID, entities.BusinessEventRatingUpdated, map[string]interface{}{
			"rating":       aggregate.Rating,
			"review_count": aggregate.ReviewCount,
		})
		if err := a.eventBus.Publish(ctx, providers.EventChannelBusinessUpdates, event); err != nil {
			logger.Warn().Err(err).Str("business_id", businessID).Msg("failed to publish rating update")
		}
	}
	return nil
}

func (a *RatingAggregator) recomputeOnce(ctx context.Context, businessID string) (entities.RatingAggregate, error) {
	business, err := a.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return entities.RatingAggregate{}, err
	}

	reviews, err := a.reviewRepo.ListByBusiness(ctx, businessID, repositories.ReviewFilter{TopLevelOnly: true})
	if err != nil {
		return entities.RatingAggregate{}, err
	}

	aggregate := AggregateRatings(reviews)
	if err := a.businessRepo.UpdateRatingAggregate(ctx, businessID, aggregate, business.Version); err != nil {
		return entities.RatingAggregate{}, err
	}
	return aggregate, nil
}

// AggregateRatings averages top-level reviews. Replies are ignored and an
// empty set yields a zero rating.
func AggregateRatings(reviews []*entities.Review) entities.RatingAggregate {
	var sum float64
	count := 0
	for _, r := range reviews {
		if r == nil || r.IsReply() {
			continue
		}
		sum += r.Rating
		count++
	}
	if count == 0 {
		return entities.RatingAggregate{}
	}
	return entities.RatingAggregate{Rating: sum / float64(count), ReviewCount: count}
}

func outcomeOf(err error) string {
	if apperrors.IsConflict(err) {
		return "conflict"
	}
	return "error"
}
