package services

import (
	"context"

	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/repositories"
	"github.com/bizfinder/discovery/internal/infrastructure/observability"
)

const reindexPageSize = 200

// ReindexService copies every active business from the database into the
// search index
type ReindexService struct {
	source repositories.BusinessQueryRepository
	index  repositories.BusinessSearchRepository
}

// NewReindexService creates a new reindex service
func NewReindexService(source repositories.BusinessQueryRepository, index repositories.BusinessSearchRepository) *ReindexService {
	return &ReindexService{source: source, index: index}
}

// ReindexAll pages through active businesses oldest first and upserts each
// one. Individual index failures are logged and counted, not fatal.
func (s *ReindexService) ReindexAll(ctx context.Context) (indexed, failed int, err error) {
	logger := observability.LoggerFromContext(ctx)
	query := repositories.BusinessQuery{
		Predicates: []repositories.Predicate{{
			Fields: []repositories.Field{repositories.FieldStatus},
			Op:     repositories.OpEquals,
			Value:  string(entities.BusinessStatusActive),
		}},
		Sort:  repositories.Sort{Field: repositories.FieldCreatedAt, Direction: repositories.SortAsc},
		Limit: reindexPageSize,
	}

	for {
		if err := ctx.Err(); err != nil {
			return indexed, failed, err
		}

		page, err := s.source.Query(ctx, query)
		if err != nil {
			return indexed, failed, err
		}

		for _, business := range page.Businesses {
			if err := s.index.Index(ctx, business); err != nil {
				failed++
				logger.Warn().Err(err).Str("business_id", business.ID).Msg("failed to index business")
				continue
			}
			indexed++
		}

		query.Offset += len(page.Businesses)
		if len(page.Businesses) < reindexPageSize || query.Offset >= page.Total {
			break
		}
	}

	logger.Info().Int("indexed", indexed).Int("failed", failed).Msg("reindex finished")
	return indexed, failed, nil
}
