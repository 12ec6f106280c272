package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/providers"
	"github.com/bizfinder/discovery/internal/domain/repositories"
	"github.com/bizfinder/discovery/internal/infrastructure/observability"
	apperrors "github.com/bizfinder/discovery/pkg/errors"
)

// businessByIDTTL is the cache lifetime of a single business, in seconds
const businessByIDTTL = 300

// BusinessCacheKey is the cache key of a single business
func BusinessCacheKey(id string) string {
	return fmt.Sprintf("business:%s", id)
}

// CachedBusinessAdapter wraps a BusinessRepository with read-through caching of GetByID.
// Writes go straight to the wrapped repository and evict the entry.
type CachedBusinessAdapter struct {
	adapter repositories.BusinessRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics
}

// NewCachedBusinessAdapter creates a new cached business adapter
func NewCachedBusinessAdapter(adapter repositories.BusinessRepository, cache providers.CacheProvider, metrics *observability.Metrics) *CachedBusinessAdapter {
	return &CachedBusinessAdapter{
		adapter: adapter,
		cache:   cache,
		metrics: metrics,
	}
}

// GetByID retrieves a business by ID with caching
func (a *CachedBusinessAdapter) GetByID(ctx context.Context, id string) (*entities.Business, error) {
	cacheKey := BusinessCacheKey(id)
	logger := observability.LoggerFromContext(ctx)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var business entities.Business
		if err := json.Unmarshal(cached, &business); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, "business")
			return &business, nil
		}
		logger.Warn().Str("business_id", id).Msg("discarding undecodable cached business")
	}
	observability.RecordCacheMiss(ctx, a.metrics, "business")

	business, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(business); err == nil {
		if err := a.cache.Set(ctx, cacheKey, data, businessByIDTTL); err != nil {
			logger.Debug().Err(err).Str("business_id", id).Msg("failed to cache business")
		}
	}

	return business, nil
}

// Create creates a new business
func (a *CachedBusinessAdapter) Create(ctx context.Context, business *entities.Business) error {
	return a.adapter.Create(ctx, business)
}

// Update updates a business and evicts it from the cache
func (a *CachedBusinessAdapter) Update(ctx context.Context, business *entities.Business) error {
	if err := a.adapter.Update(ctx, business); err != nil {
		return err
	}
	a.invalidate(ctx, business.ID)
	return nil
}

// UpdateRatingAggregate writes the aggregate and evicts the cached business.
// The entry is evicted on conflict as well so a retry reads the current version.
func (a *CachedBusinessAdapter) UpdateRatingAggregate(ctx context.Context, id string, aggregate entities.RatingAggregate, expectedVersion int64) error {
	err := a.adapter.UpdateRatingAggregate(ctx, id, aggregate, expectedVersion)
	if err == nil || apperrors.IsConflict(err) {
		a.invalidate(ctx, id)
	}
	return err
}

// Query is not cached; discovery results depend on the wall clock
func (a *CachedBusinessAdapter) Query(ctx context.Context, q repositories.BusinessQuery) (*repositories.QueryResult, error) {
	return a.adapter.Query(ctx, q)
}

// Invalidate evicts a business from the cache
func (a *CachedBusinessAdapter) Invalidate(ctx context.Context, id string) {
	a.invalidate(ctx, id)
}

func (a *CachedBusinessAdapter) invalidate(ctx context.Context, id string) {
	if err := a.cache.Delete(ctx, BusinessCacheKey(id)); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("business_id", id).Msg("failed to evict cached business")
	}
}
