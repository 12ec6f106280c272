package repositories

import (
	"context"

	"github.com/bizfinder/discovery/internal/domain/entities"
)

// BusinessQueryRepository executes translated discovery queries
type BusinessQueryRepository interface {
	// Query returns a page of businesses matching q and the total match count
	Query(ctx context.Context, q BusinessQuery) (*QueryResult, error)
}

// BusinessRepository defines the interface for business data operations
type BusinessRepository interface {
	BusinessQueryRepository

	// Create creates a new business
	Create(ctx context.Context, business *entities.Business) error

	// GetByID retrieves a business by ID regardless of status
	GetByID(ctx context.Context, id string) (*entities.Business, error)

	// Update writes owner-editable fields and status. The rating aggregate is
	// left untouched. The stored version is incremented.
	Update(ctx context.Context, business *entities.Business) error

	// UpdateRatingAggregate writes rating and review count only when the stored
	// version equals expectedVersion; otherwise it returns a conflict error.
	UpdateRatingAggregate(ctx context.Context, id string, aggregate entities.RatingAggregate, expectedVersion int64) error
}

// BusinessSearchRepository is a search engine holding a copy of active businesses
type BusinessSearchRepository interface {
	BusinessQueryRepository

	// Index upserts a business document
	Index(ctx context.Context, business *entities.Business) error

	// Delete removes a business from the index
	Delete(ctx context.Context, id string) error
}

// BusinessHoursRepository stores weekly schedules
type BusinessHoursRepository interface {
	// ReplaceForBusiness swaps the whole weekly schedule of a business
	ReplaceForBusiness(ctx context.Context, businessID string, hours []*entities.BusinessHours) error

	// ListByBusiness returns the schedule records of one business
	ListByBusiness(ctx context.Context, businessID string) ([]*entities.BusinessHours, error)

	// ListByBusinessIDs returns schedule records keyed by business id
	ListByBusinessIDs(ctx context.Context, businessIDs []string) (map[string][]*entities.BusinessHours, error)
}

// ReviewFilter narrows review listings. Limit 0 means no limit.
type ReviewFilter struct {
	TopLevelOnly bool
	Limit        int
	Offset       int
}

// ReviewRepository defines the interface for review data operations
type ReviewRepository interface {
	Create(ctx context.Context, review *entities.Review) error
	GetByID(ctx context.Context, id string) (*entities.Review, error)
	Update(ctx context.Context, review *entities.Review) error
	Delete(ctx context.Context, id string) error
	ListByBusiness(ctx context.Context, businessID string, filter ReviewFilter) ([]*entities.Review, error)
}
