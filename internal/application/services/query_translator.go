package services

import (
	"strings"

	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/repositories"
	apperrors "github.com/bizfinder/discovery/pkg/errors"
)

const (
	defaultDiscoveryLimit = 20
	maxDiscoveryLimit     = 100
)

var sortFields = map[string]repositories.Field{
	SortByCreatedAt:   repositories.FieldCreatedAt,
	SortByUpdatedAt:   repositories.FieldUpdatedAt,
	SortByRating:      repositories.FieldRating,
	SortByReviewCount: repositories.FieldReviewCount,
	SortByName:        repositories.FieldName,
	SortByPrice:       repositories.FieldMaxPrice,
}

// QueryTranslator maps discovery criteria onto storage predicates
type QueryTranslator struct {
	defaultLimit int
	maxLimit     int
}

// NewQueryTranslator creates a translator with pagination bounds. Non-positive
// values fall back to 20 and 100.
func NewQueryTranslator(defaultLimit, maxLimit int) *QueryTranslator {
	if maxLimit <= 0 {
		maxLimit = maxDiscoveryLimit
	}
	if defaultLimit <= 0 || defaultLimit > maxLimit {
		defaultLimit = min(defaultDiscoveryLimit, maxLimit)
	}
	return &QueryTranslator{defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// TranslateCriteria translates with the default pagination bounds
func TranslateCriteria(criteria DiscoveryCriteria) (repositories.BusinessQuery, error) {
	return NewQueryTranslator(defaultDiscoveryLimit, maxDiscoveryLimit).Translate(criteria)
}

// Translate builds the storage query. Open-now and distance constraints are
// not translated; the orchestrator applies them afterwards.
func (t *QueryTranslator) Translate(criteria DiscoveryCriteria) (repositories.BusinessQuery, error) {
	if err := criteria.Validate(); err != nil {
		return repositories.BusinessQuery{}, err
	}

	predicates := []repositories.Predicate{{
		Fields: []repositories.Field{repositories.FieldStatus},
		Op:     repositories.OpEquals,
		Value:  string(entities.BusinessStatusActive),
	}}

	if category := strings.TrimSpace(criteria.Category); category != "" {
		predicates = append(predicates, repositories.Predicate{
			Fields: []repositories.Field{repositories.FieldCategories},
			Op:     repositories.OpTextMatch,
			Value:  category,
		})
	}

	if query := strings.TrimSpace(criteria.Query); query != "" {
		predicates = append(predicates, repositories.Predicate{
			Fields: []repositories.Field{
				repositories.FieldName,
				repositories.FieldAbout,
				repositories.FieldCategories,
				repositories.FieldAddress,
			},
			Op:    repositories.OpTextMatch,
			Value: query,
		})
	}

	if location := strings.TrimSpace(criteria.Location); location != "" {
		predicates = append(predicates, repositories.Predicate{
			Fields: []repositories.Field{
				repositories.FieldAddress,
				repositories.FieldCity,
				repositories.FieldState,
				repositories.FieldCountry,
			},
			Op:    repositories.OpTextMatch,
			Value: location,
		})
	}

	if strings.TrimSpace(criteria.Price) != "" {
		ceiling, err := ParsePriceCeiling(criteria.Price)
		if err != nil {
			return repositories.BusinessQuery{}, apperrors.NewValidationError(err.Error())
		}
		predicates = append(predicates, repositories.Predicate{
			Fields: []repositories.Field{repositories.FieldMaxPrice},
			Op:     repositories.OpLessOrEqual,
			Value:  ceiling,
		})
	}

	seen := make(map[Feature]bool, len(criteria.Features))
	for _, raw := range criteria.Features {
		feature, err := ParseFeature(string(raw))
		if err != nil {
			return repositories.BusinessQuery{}, err
		}
		if seen[feature] {
			continue
		}
		seen[feature] = true
		predicate, err := featurePredicate(feature)
		if err != nil {
			return repositories.BusinessQuery{}, err
		}
		predicates = append(predicates, predicate)
	}

	sort, err := translateSort(criteria.SortBy, criteria.SortDirection)
	if err != nil {
		return repositories.BusinessQuery{}, err
	}

	limit := criteria.Limit
	if limit == 0 {
		limit = t.defaultLimit
	}
	if limit > t.maxLimit {
		limit = t.maxLimit
	}

	return repositories.BusinessQuery{
		Predicates: predicates,
		Sort:       sort,
		Limit:      limit,
		Offset:     criteria.Offset,
	}, nil
}

func featurePredicate(feature Feature) (repositories.Predicate, error) {
	switch feature {
	case FeatureOnSiteParking:
		return repositories.Predicate{Fields: []repositories.Field{repositories.FieldOnSiteParking}, Op: repositories.OpEquals, Value: true}, nil
	case FeatureGarageParking:
		return repositories.Predicate{Fields: []repositories.Field{repositories.FieldGarageParking}, Op: repositories.OpEquals, Value: true}, nil
	case FeatureWifi:
		return repositories.Predicate{Fields: []repositories.Field{repositories.FieldWifi}, Op: repositories.OpEquals, Value: true}, nil
	case FeatureBankTransfers:
		return repositories.Predicate{Fields: []repositories.Field{repositories.FieldPaymentOptions}, Op: repositories.OpContains, Value: string(entities.PaymentOptionBankTransfer)}, nil
	case FeatureCash:
		return repositories.Predicate{Fields: []repositories.Field{repositories.FieldPaymentOptions}, Op: repositories.OpContains, Value: string(entities.PaymentOptionCash)}, nil
	}
	return repositories.Predicate{}, apperrors.NewValidationErrorf("unknown feature %q", feature)
}

// translateSort maps the client sort onto storage. Distance is not a storage
// order, so it leaves the storage default in place.
func translateSort(sortBy, direction string) (repositories.Sort, error) {
	dir := repositories.SortDesc
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", "desc":
	case "asc":
		dir = repositories.SortAsc
	default:
		return repositories.Sort{}, apperrors.NewValidationErrorf("unknown sort direction %q", direction)
	}

	switch sortBy {
	case "":
		return repositories.Sort{Field: repositories.FieldCreatedAt, Direction: dir}, nil
	case SortByDistance:
		return repositories.Sort{Field: repositories.FieldCreatedAt, Direction: repositories.SortDesc}, nil
	}

	field, ok := sortFields[sortBy]
	if !ok {
		return repositories.Sort{}, apperrors.NewValidationErrorf("unknown sort field %q", sortBy)
	}
	return repositories.Sort{Field: field, Direction: dir}, nil
}
