package services

import (
	"context"
	"math"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/repositories"
	"github.com/bizfinder/discovery/internal/infrastructure/observability"
	apperrors "github.com/bizfinder/discovery/pkg/errors"
	"github.com/bizfinder/discovery/pkg/geo"
)

const (
	// exactTotalBatchSize is the page size used when scanning the full match set
	exactTotalBatchSize = 100

	defaultNearbyDistanceKm = 10.0
	defaultNearbyLimit      = 10
	maxNearbyCandidates     = 100
)

// DiscoveryResult is one page of discovered businesses
type DiscoveryResult struct {
	Businesses []*entities.Business `json:"businesses"`
	// Total counts storage matches. In page mode it is taken before open-now
	// and distance filtering and may overstate what those filters would keep.
	Total int `json:"total"`
	// TotalIsEstimate is set when post-filters ran over a single page only
	TotalIsEstimate bool `json:"total_is_estimate"`
	// DistancesKm holds the distance from the user keyed by business id when
	// the request carried a user location
	DistancesKm map[string]float64 `json:"distances_km,omitempty"`
}

// NearbyBusiness pairs a business with its distance from the search point
type NearbyBusiness struct {
	Business   *entities.Business `json:"business"`
	DistanceKm float64            `json:"distance_km"`
}

// DiscoveryService lists businesses: storage query first, then open-now and
// distance filtering and distance ordering in memory.
type DiscoveryService struct {
	queryRepo  repositories.BusinessQueryRepository
	hoursRepo  repositories.BusinessHoursRepository
	translator *QueryTranslator
	metrics    *observability.Metrics
	now        func() time.Time
}

// NewDiscoveryService creates a new discovery service
func NewDiscoveryService(
	queryRepo repositories.BusinessQueryRepository,
	hoursRepo repositories.BusinessHoursRepository,
	translator *QueryTranslator,
	metrics *observability.Metrics,
) *DiscoveryService {
	if translator == nil {
		translator = NewQueryTranslator(defaultDiscoveryLimit, maxDiscoveryLimit)
	}
	return &DiscoveryService{
		queryRepo:  queryRepo,
		hoursRepo:  hoursRepo,
		translator: translator,
		metrics:    metrics,
		now:        time.Now,
	}
}

// WithClock replaces the wall clock used for open-now checks
func (s *DiscoveryService) WithClock(now func() time.Time) *DiscoveryService {
	s.now = now
	return s
}

// ListBusinesses runs a discovery request
func (s *DiscoveryService) ListBusinesses(ctx context.Context, criteria DiscoveryCriteria) (*DiscoveryResult, error) {
	ctx, span := observability.StartSpan(ctx, "DiscoveryService.ListBusinesses")
	defer span.End()

	query, err := s.translator.Translate(criteria)
	if err != nil {
		return nil, err
	}

	var result *DiscoveryResult
	if criteria.ExactTotal && criteria.NeedsPostFilter() {
		result, err = s.listExact(ctx, query, criteria)
	} else {
		result, err = s.listPage(ctx, query, criteria)
	}
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.SetSpanAttributes(span,
		attribute.Int("discovery.total", result.Total),
		attribute.Int("discovery.returned", len(result.Businesses)),
		attribute.Bool("discovery.total_is_estimate", result.TotalIsEstimate),
	)
	return result, nil
}

func (s *DiscoveryService) listPage(ctx context.Context, query repositories.BusinessQuery, criteria DiscoveryCriteria) (*DiscoveryResult, error) {
	page, err := s.queryRepo.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	survivors, err := s.postFilter(ctx, page.Businesses, criteria)
	if err != nil {
		return nil, err
	}

	distances := s.distances(survivors, criteria)
	if criteria.SortsByDistance() {
		sortByDistance(survivors, distances)
	}

	return &DiscoveryResult{
		Businesses:      survivors,
		Total:           page.Total,
		TotalIsEstimate: criteria.NeedsPostFilter(),
		DistancesKm:     distances,
	}, nil
}

// listExact filters every storage match before paginating
func (s *DiscoveryService) listExact(ctx context.Context, query repositories.BusinessQuery, criteria DiscoveryCriteria) (*DiscoveryResult, error) {
	scan := query
	scan.Limit = exactTotalBatchSize
	scan.Offset = 0

	var survivors []*entities.Business
	for {
		batch, err := s.queryRepo.Query(ctx, scan)
		if err != nil {
			return nil, err
		}

		kept, err := s.postFilter(ctx, batch.Businesses, criteria)
		if err != nil {
			return nil, err
		}
		survivors = append(survivors, kept...)

		scan.Offset += len(batch.Businesses)
		if len(batch.Businesses) < exactTotalBatchSize || scan.Offset >= batch.Total {
			break
		}
	}

	distances := s.distances(survivors, criteria)
	if criteria.SortsByDistance() {
		sortByDistance(survivors, distances)
	}

	total := len(survivors)
	start := min(query.Offset, total)
	end := min(start+query.Limit, total)
	page := survivors[start:end]

	return &DiscoveryResult{
		Businesses:  page,
		Total:       total,
		DistancesKm: onlyFor(page, distances),
	}, nil
}

// postFilter applies open-now and distance filtering to candidates in order
func (s *DiscoveryService) postFilter(ctx context.Context, candidates []*entities.Business, criteria DiscoveryCriteria) ([]*entities.Business, error) {
	survivors := candidates

	if criteria.OpenNow && len(survivors) > 0 {
		ids := make([]string, 0, len(survivors))
		for _, b := range survivors {
			ids = append(ids, b.ID)
		}
		hoursByBusiness, err := s.hoursRepo.ListByBusinessIDs(ctx, ids)
		if err != nil {
			return nil, err
		}

		now := s.now()
		open := make([]*entities.Business, 0, len(survivors))
		for _, b := range survivors {
			if IsOpenNow(entities.ScheduleFromHours(hoursByBusiness[b.ID]), now) {
				open = append(open, b)
			}
		}
		observability.RecordPostFilterDrop(ctx, s.metrics, "open_now", len(survivors)-len(open))
		survivors = open
	}

	if criteria.HasGeoFilter() {
		origin := geo.Coordinates{Latitude: *criteria.UserLatitude, Longitude: *criteria.UserLongitude}
		logger := observability.LoggerFromContext(ctx)
		near := make([]*entities.Business, 0, len(survivors))
		for _, b := range survivors {
			coords, ok, err := b.Location()
			if err != nil {
				logger.Debug().Err(err).Str("business_id", b.ID).Msg("skipping business with unreadable coordinates")
				continue
			}
			if !ok {
				continue
			}
			if origin.DistanceTo(coords) <= *criteria.MaxDistanceKm {
				near = append(near, b)
			}
		}
		observability.RecordPostFilterDrop(ctx, s.metrics, "distance", len(survivors)-len(near))
		survivors = near
	}

	return survivors, nil
}

// distances computes the distance of every locatable business from the user
func (s *DiscoveryService) distances(businesses []*entities.Business, criteria DiscoveryCriteria) map[string]float64 {
	if !criteria.HasUserLocation() {
		return nil
	}
	origin := geo.Coordinates{Latitude: *criteria.UserLatitude, Longitude: *criteria.UserLongitude}
	out := make(map[string]float64, len(businesses))
	for _, b := range businesses {
		if coords, ok, err := b.Location(); ok && err == nil {
			out[b.ID] = origin.DistanceTo(coords)
		}
	}
	return out
}

// sortByDistance orders nearest first. Businesses without coordinates weigh
// as distance zero and keep their relative order.
func sortByDistance(businesses []*entities.Business, distances map[string]float64) {
	sort.SliceStable(businesses, func(i, j int) bool {
		return distances[businesses[i].ID] < distances[businesses[j].ID]
	})
}

func onlyFor(businesses []*entities.Business, distances map[string]float64) map[string]float64 {
	if distances == nil {
		return nil
	}
	out := make(map[string]float64, len(businesses))
	for _, b := range businesses {
		if d, ok := distances[b.ID]; ok {
			out[b.ID] = d
		}
	}
	return out
}

// GetNearbyBusinesses returns active businesses within distanceKm of a point,
// nearest first. limit is clamped to the translator's maximum and only the
// first min(limit*5, 100) storage candidates are considered.
func (s *DiscoveryService) GetNearbyBusinesses(ctx context.Context, lat, lon, distanceKm float64, limit int) ([]NearbyBusiness, error) {
	ctx, span := observability.StartSpan(ctx, "DiscoveryService.GetNearbyBusinesses")
	defer span.End()

	origin := geo.Coordinates{Latitude: lat, Longitude: lon}
	if err := origin.Validate(); err != nil {
		return nil, validationError(err)
	}
	if math.IsNaN(distanceKm) {
		return nil, apperrors.NewValidationError("distanceKm must be a number")
	}
	if distanceKm <= 0 {
		distanceKm = defaultNearbyDistanceKm
	}
	if limit <= 0 {
		limit = defaultNearbyLimit
	}
	limit = min(limit, s.translator.maxLimit)

	query, err := s.translator.Translate(DiscoveryCriteria{Limit: min(limit*5, maxNearbyCandidates)})
	if err != nil {
		return nil, err
	}
	query.Limit = min(limit*5, maxNearbyCandidates)

	page, err := s.queryRepo.Query(ctx, query)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	nearby := make([]NearbyBusiness, 0, len(page.Businesses))
	for _, b := range page.Businesses {
		coords, ok, err := b.Location()
		if err != nil || !ok {
			continue
		}
		if d := origin.DistanceTo(coords); d <= distanceKm {
			nearby = append(nearby, NearbyBusiness{Business: b, DistanceKm: d})
		}
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})
	if len(nearby) > limit {
		nearby = nearby[:limit]
	}

	observability.RecordPostFilterDrop(ctx, s.metrics, "nearby", len(page.Businesses)-len(nearby))
	return nearby, nil
}
