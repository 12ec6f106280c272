package search

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/repositories"
)

// maxPerPage is the Typesense per_page ceiling
const maxPerPage = 250

// ErrUnsupportedByEngine marks a query that is valid but cannot be answered
// by Typesense with the same semantics as the database.
var ErrUnsupportedByEngine = errors.New("query not supported by search engine")

var documentFields = map[repositories.Field]string{
	repositories.FieldStatus:         "status",
	repositories.FieldName:           "name",
	repositories.FieldAbout:          "about",
	repositories.FieldCategories:     "categories",
	repositories.FieldAddress:        "address",
	repositories.FieldCity:           "city",
	repositories.FieldState:          "state",
	repositories.FieldCountry:        "country",
	repositories.FieldPaymentOptions: "payment_options",
	repositories.FieldMaxPrice:       "max_price",
	repositories.FieldOnSiteParking:  "on_site_parking",
	repositories.FieldGarageParking:  "garage_parking",
	repositories.FieldWifi:           "wifi",
	repositories.FieldRating:         "rating",
	repositories.FieldReviewCount:    "review_count",
	repositories.FieldCreatedAt:      "created_at",
	repositories.FieldUpdatedAt:      "updated_at",
}

// pageWindow trims a fetched page when the offset is not a multiple of the limit
type pageWindow struct {
	skip  int
	limit int
}

func (w pageWindow) apply(businesses []*entities.Business) []*entities.Business {
	if w.skip >= len(businesses) {
		return businesses[:0]
	}
	businesses = businesses[w.skip:]
	if w.limit > 0 && len(businesses) > w.limit {
		businesses = businesses[:w.limit]
	}
	return businesses
}

// RenderSearchParams turns a translated query into Typesense search parameters.
// Every text predicate must target the same fields, since Typesense takes a
// single query_by. Token dropping and typo tolerance are disabled so every
// term has to match as written.
func RenderSearchParams(q repositories.BusinessQuery) (*api.SearchCollectionParams, pageWindow, error) {
	var (
		terms   []string
		queryBy string
		filters []string
	)

	for _, p := range q.Predicates {
		if len(p.Fields) == 0 {
			return nil, pageWindow{}, fmt.Errorf("predicate %s has no fields", p)
		}

		if p.Op == repositories.OpTextMatch {
			text, ok := p.Value.(string)
			if !ok {
				return nil, pageWindow{}, fmt.Errorf("text_match needs a string value, got %T", p.Value)
			}
			fields, err := textFields(p.Fields)
			if err != nil {
				return nil, pageWindow{}, err
			}
			if queryBy != "" && queryBy != fields {
				return nil, pageWindow{}, fmt.Errorf("%w: text matches over %s and %s", ErrUnsupportedByEngine, queryBy, fields)
			}
			queryBy = fields
			if trimmed := strings.TrimSpace(text); trimmed != "" {
				terms = append(terms, trimmed)
			}
			continue
		}

		clause, err := filterClause(p)
		if err != nil {
			return nil, pageWindow{}, err
		}
		filters = append(filters, clause)
	}

	params := &api.SearchCollectionParams{
		Q:       pointer.String("*"),
		QueryBy: pointer.String("name"),
	}
	if len(terms) > 0 {
		params.Q = pointer.String(strings.Join(terms, " "))
		params.QueryBy = pointer.String(queryBy)
		params.DropTokensThreshold = pointer.Int(0)
		params.NumTypos = pointer.String("0")
		params.Prefix = pointer.String("true")
	}
	if len(filters) > 0 {
		params.FilterBy = pointer.String(strings.Join(filters, " && "))
	}

	sortBy, err := sortClause(q.Sort)
	if err != nil {
		return nil, pageWindow{}, err
	}
	params.SortBy = pointer.String(sortBy)

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	window := pageWindow{limit: limit}
	if q.Offset%limit == 0 {
		params.Page = pointer.Int(q.Offset/limit + 1)
		params.PerPage = pointer.Int(limit)
	} else {
		perPage := q.Offset + limit
		if perPage > maxPerPage {
			return nil, pageWindow{}, fmt.Errorf("%w: offset %d is not a multiple of limit %d and exceeds %d results",
				ErrUnsupportedByEngine, q.Offset, limit, maxPerPage)
		}
		params.Page = pointer.Int(1)
		params.PerPage = pointer.Int(perPage)
		window.skip = q.Offset
	}

	return params, window, nil
}

// textFields renders a sorted query_by list for one text predicate
func textFields(fields []repositories.Field) (string, error) {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		name, ok := documentFields[f]
		if !ok {
			return "", fmt.Errorf("unsupported field %q", f)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ","), nil
}

func filterClause(p repositories.Predicate) (string, error) {
	value, err := filterValue(p.Value)
	if err != nil {
		return "", err
	}

	var op string
	switch p.Op {
	case repositories.OpEquals, repositories.OpContains:
		op = ":="
	case repositories.OpLessOrEqual:
		op = ":<="
	default:
		return "", fmt.Errorf("unsupported operator %q", p.Op)
	}

	parts := make([]string, 0, len(p.Fields))
	for _, f := range p.Fields {
		name, ok := documentFields[f]
		if !ok {
			return "", fmt.Errorf("unsupported field %q", f)
		}
		parts = append(parts, name+op+value)
	}

	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " || ") + ")", nil
}

func filterValue(v interface{}) (string, error) {
	switch val := v.(type) {
	case string:
		return "`" + strings.ReplaceAll(val, "`", "") + "`", nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("unsupported filter value %T", v)
}

func sortClause(s repositories.Sort) (string, error) {
	field := s.Field
	if field == "" {
		field = repositories.FieldCreatedAt
	}
	name, ok := documentFields[field]
	if !ok {
		return "", fmt.Errorf("unsupported sort field %q", field)
	}
	switch field {
	case repositories.FieldCategories, repositories.FieldPaymentOptions, repositories.FieldAddress, repositories.FieldAbout:
		return "", fmt.Errorf("unsupported sort field %q", field)
	}

	direction := "desc"
	if s.Direction == repositories.SortAsc {
		direction = "asc"
	}
	return name + ":" + direction, nil
}
