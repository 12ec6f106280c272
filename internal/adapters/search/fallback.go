package search

import (
	"context"

	"github.com/bizfinder/discovery/internal/domain/repositories"
	"github.com/bizfinder/discovery/internal/infrastructure/observability"
	apperrors "github.com/bizfinder/discovery/pkg/errors"
)

// FallbackQueryRepository answers from the search engine and falls back to
// the database when the engine is unavailable
type FallbackQueryRepository struct {
	primary  repositories.BusinessQueryRepository
	fallback repositories.BusinessQueryRepository
}

// NewFallbackQueryRepository creates a query repository. primary may be nil,
// in which case every query goes to fallback.
func NewFallbackQueryRepository(primary, fallback repositories.BusinessQueryRepository) *FallbackQueryRepository {
	return &FallbackQueryRepository{primary: primary, fallback: fallback}
}

// Query implements repositories.BusinessQueryRepository
func (r *FallbackQueryRepository) Query(ctx context.Context, q repositories.BusinessQuery) (*repositories.QueryResult, error) {
	if r.primary == nil {
		return r.fallback.Query(ctx, q)
	}

	result, err := r.primary.Query(ctx, q)
	if err == nil {
		return result, nil
	}
	// A query the engine rejects would be rejected by the database too.
	if apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Warn().Err(err).Msg("search engine query failed, falling back to database")
	return r.fallback.Query(ctx, q)
}
