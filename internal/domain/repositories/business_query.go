package repositories

import (
	"fmt"

	"github.com/bizfinder/discovery/internal/domain/entities"
)

// Field is a filterable or sortable business attribute. Storage adapters map
// each field onto their own column or document key.
type Field string

const (
	FieldStatus         Field = "status"
	FieldName           Field = "name"
	FieldAbout          Field = "about"
	FieldCategories     Field = "categories"
	FieldAddress        Field = "address"
	FieldCity           Field = "city"
	FieldState          Field = "state"
	FieldCountry        Field = "country"
	FieldPaymentOptions Field = "payment_options"
	FieldMaxPrice       Field = "max_price"
	FieldOnSiteParking  Field = "on_site_parking"
	FieldGarageParking  Field = "garage_parking"
	FieldWifi           Field = "wifi"
	FieldRating         Field = "rating"
	FieldReviewCount    Field = "review_count"
	FieldCreatedAt      Field = "created_at"
	FieldUpdatedAt      Field = "updated_at"
)

// PredicateOp is the comparison a Predicate applies
type PredicateOp string

const (
	// OpEquals matches scalar equality.
	OpEquals PredicateOp = "equals"
	// OpContains matches when a set-valued field holds Value.
	OpContains PredicateOp = "contains"
	// OpLessOrEqual matches numeric fields <= Value.
	OpLessOrEqual PredicateOp = "lte"
	// OpTextMatch is a case-insensitive substring match.
	OpTextMatch PredicateOp = "text_match"
)

// Predicate is one storage-side condition. When Fields has more than one
// entry the condition holds if it holds for any of them.
type Predicate struct {
	Fields []Field
	Op     PredicateOp
	Value  interface{}
}

// String renders the predicate for logs and cache keys.
func (p Predicate) String() string {
	return fmt.Sprintf("%v %s %v", p.Fields, p.Op, p.Value)
}

// SortDirection is ascending or descending
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Sort is a storage-side ordering
type Sort struct {
	Field     Field
	Direction SortDirection
}

// BusinessQuery is a translated discovery request: predicates are ANDed.
type BusinessQuery struct {
	Predicates []Predicate
	Sort       Sort
	Limit      int
	Offset     int
}

// QueryResult holds one page of matches and the total number of matches
// before pagination.
type QueryResult struct {
	Businesses []*entities.Business
	Total      int
}
