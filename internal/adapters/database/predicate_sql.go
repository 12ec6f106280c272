package database

import (
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/bizfinder/discovery/internal/domain/repositories"
)

type columnKind int

const (
	scalarColumn columnKind = iota
	arrayColumn
	addressColumn
)

type businessColumn struct {
	name string
	kind columnKind
}

var businessFieldColumns = map[repositories.Field]businessColumn{
	repositories.FieldStatus:         {name: "status"},
	repositories.FieldName:           {name: "name"},
	repositories.FieldAbout:          {name: "about"},
	repositories.FieldCategories:     {name: "categories", kind: arrayColumn},
	repositories.FieldAddress:        {name: "address", kind: addressColumn},
	repositories.FieldCity:           {name: "city"},
	repositories.FieldState:          {name: "state"},
	repositories.FieldCountry:        {name: "country"},
	repositories.FieldPaymentOptions: {name: "payment_options", kind: arrayColumn},
	repositories.FieldMaxPrice:       {name: "max_price"},
	repositories.FieldOnSiteParking:  {name: "on_site_parking"},
	repositories.FieldGarageParking:  {name: "garage_parking"},
	repositories.FieldWifi:           {name: "wifi"},
	repositories.FieldRating:         {name: "rating"},
	repositories.FieldReviewCount:    {name: "review_count"},
	repositories.FieldCreatedAt:      {name: "created_at"},
	repositories.FieldUpdatedAt:      {name: "updated_at"},
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}

// predicateExpressions renders storage-neutral predicates as goqu expressions.
func predicateExpressions(predicates []repositories.Predicate) ([]exp.Expression, error) {
	exprs := make([]exp.Expression, 0, len(predicates))
	for _, p := range predicates {
		expr, err := predicateExpression(p)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

func predicateExpression(p repositories.Predicate) (exp.Expression, error) {
	if len(p.Fields) == 0 {
		return nil, fmt.Errorf("predicate %s has no fields", p)
	}

	alternatives := make([]exp.Expression, 0, len(p.Fields))
	for _, field := range p.Fields {
		col, ok := businessFieldColumns[field]
		if !ok {
			return nil, fmt.Errorf("unsupported field %q", field)
		}
		expr, err := fieldExpression(col, p.Op, p.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field, err)
		}
		alternatives = append(alternatives, expr)
	}

	if len(alternatives) == 1 {
		return alternatives[0], nil
	}
	return goqu.Or(alternatives...), nil
}

func fieldExpression(col businessColumn, op repositories.PredicateOp, value interface{}) (exp.Expression, error) {
	switch op {
	case repositories.OpEquals:
		if col.kind != scalarColumn {
			return nil, fmt.Errorf("equals needs a scalar column")
		}
		return goqu.Ex{col.name: value}, nil

	case repositories.OpLessOrEqual:
		if col.kind != scalarColumn {
			return nil, fmt.Errorf("lte needs a scalar column")
		}
		return goqu.I(col.name).Lte(value), nil

	case repositories.OpContains:
		if col.kind != arrayColumn {
			return nil, fmt.Errorf("contains needs an array column")
		}
		return goqu.L("? @> ARRAY[?]::text[]", goqu.I(col.name), value), nil

	case repositories.OpTextMatch:
		text, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("text_match needs a string value, got %T", value)
		}
		pattern := containsPattern(text)
		switch col.kind {
		case arrayColumn:
			return goqu.L("array_to_string(?, ' ') ILIKE ?", goqu.I(col.name), pattern), nil
		case addressColumn:
			return goqu.L("concat_ws(' ', address_line1, address_line2, city, state, postal_code, country) ILIKE ?", pattern), nil
		default:
			return goqu.I(col.name).ILike(pattern), nil
		}
	}

	return nil, fmt.Errorf("unsupported operator %q", op)
}

// orderExpressions maps a sort onto columns. Ties break on id so pages are stable.
func orderExpressions(sort repositories.Sort) ([]exp.OrderedExpression, error) {
	field := sort.Field
	if field == "" {
		field = repositories.FieldCreatedAt
	}
	col, ok := businessFieldColumns[field]
	if !ok || col.kind != scalarColumn {
		return nil, fmt.Errorf("unsupported sort field %q", field)
	}

	primary := goqu.I(col.name).Desc().NullsLast()
	if sort.Direction == repositories.SortAsc {
		primary = goqu.I(col.name).Asc().NullsLast()
	}
	return []exp.OrderedExpression{primary, goqu.I("id").Asc()}, nil
}
