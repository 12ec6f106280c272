package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/providers"
	"github.com/bizfinder/discovery/internal/domain/repositories"
	"github.com/bizfinder/discovery/internal/infrastructure/observability"
)

const searchSyncTimeout = 5 * time.Second

// BusinessCacheInvalidator drops cached copies of a business
type BusinessCacheInvalidator interface {
	Invalidate(ctx context.Context, id string)
}

// SearchSyncService keeps the search index and the business cache in step
// with Postgres by reacting to business events
type SearchSyncService struct {
	repo       repositories.BusinessRepository
	searchRepo repositories.BusinessSearchRepository
	cache      BusinessCacheInvalidator
	eventBus   providers.EventBus
	metrics    *observability.Metrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSearchSyncService creates a new search sync service. searchRepo and cache may be nil.
func NewSearchSyncService(
	repo repositories.BusinessRepository,
	searchRepo repositories.BusinessSearchRepository,
	cache BusinessCacheInvalidator,
	eventBus providers.EventBus,
	metrics *observability.Metrics,
) *SearchSyncService {
	ctx, cancel := context.WithCancel(context.Background())
	return &SearchSyncService{
		repo:       repo,
		searchRepo: searchRepo,
		cache:      cache,
		eventBus:   eventBus,
		metrics:    metrics,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start begins listening for business events
func (s *SearchSyncService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelBusinessUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to business updates: %w", err)
	}

	s.wg.Add(1)
	go s.processEvents(eventChan)
	observability.GetLogger().Info().Msg("search sync service started")
	return nil
}

// Stop stops the subscriber and waits for the in-flight event
func (s *SearchSyncService) Stop() {
	s.cancel()
	s.wg.Wait()
	observability.GetLogger().Info().Msg("search sync service stopped")
}

func (s *SearchSyncService) processEvents(eventChan <-chan *entities.BusinessEvent) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(s.ctx, searchSyncTimeout)
			_ = s.HandleEvent(ctx, event)
			cancel()
		}
	}
}

// HandleEvent reloads the business named by event and pushes it to the
// search index, or removes it when it is disabled or gone.
func (s *SearchSyncService) HandleEvent(ctx context.Context, event *entities.BusinessEvent) error {
	logger := observability.LoggerFromContext(ctx).With().
		Str("business_id", event.BusinessID).
		Str("event_type", string(event.EventType)).
		Logger()

	if s.cache != nil {
		s.cache.Invalidate(ctx, event.BusinessID)
	}
	if s.searchRepo == nil {
		return nil
	}

	business, err := s.repo.GetByID(ctx, event.BusinessID)
	if err != nil {
		observability.RecordSearchSyncFailure(ctx, s.metrics, string(event.EventType))
		logger.Warn().Err(err).Msg("failed to reload business for search sync")
		return err
	}

	if business.IsActive() {
		err = s.searchRepo.Index(ctx, business)
	} else {
		err = s.searchRepo.Delete(ctx, business.ID)
	}
	if err != nil {
		observability.RecordSearchSyncFailure(ctx, s.metrics, string(event.EventType))
		logger.Warn().Err(err).Msg("failed to sync business to search index")
		return err
	}

	logger.Debug().Bool("indexed", business.IsActive()).Msg("search index synced")
	return nil
}
