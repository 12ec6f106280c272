package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizfinder/discovery/internal/domain/repositories"
	apperrors "github.com/bizfinder/discovery/pkg/errors"
)

func ptr(v float64) *float64 { return &v }

func TestTranslateCriteria_EmptyCriteriaOnlyFiltersActive(t *testing.T) {
	q, err := TranslateCriteria(DiscoveryCriteria{})
	require.NoError(t, err)

	require.Len(t, q.Predicates, 1)
	assert.Equal(t, repositories.Predicate{
		Fields: []repositories.Field{repositories.FieldStatus},
		Op:     repositories.OpEquals,
		Value:  "active",
	}, q.Predicates[0])
	assert.Equal(t, repositories.Sort{Field: repositories.FieldCreatedAt, Direction: repositories.SortDesc}, q.Sort)
	assert.Equal(t, 20, q.Limit)
	assert.Equal(t, 0, q.Offset)
}

func TestTranslateCriteria_AllFilters(t *testing.T) {
	q, err := TranslateCriteria(DiscoveryCriteria{
		Category:      "salon",
		Query:         "braids",
		Location:      "Ikeja",
		Price:         "$$",
		Features:      []Feature{FeatureWifi, FeatureCash, FeatureBankTransfers, FeatureOnSiteParking, FeatureGarageParking},
		OpenNow:       true,
		UserLatitude:  ptr(6.6),
		UserLongitude: ptr(3.35),
		MaxDistanceKm: ptr(5),
		SortBy:        SortByPrice,
		SortDirection: "ASC",
		Limit:         10,
		Offset:        30,
	})
	require.NoError(t, err)

	assert.Equal(t, []repositories.Predicate{
		{Fields: []repositories.Field{repositories.FieldStatus}, Op: repositories.OpEquals, Value: "active"},
		{Fields: []repositories.Field{repositories.FieldCategories}, Op: repositories.OpTextMatch, Value: "salon"},
		{
			Fields: []repositories.Field{repositories.FieldName, repositories.FieldAbout, repositories.FieldCategories, repositories.FieldAddress},
			Op:     repositories.OpTextMatch,
			Value:  "braids",
		},
		{
			Fields: []repositories.Field{repositories.FieldAddress, repositories.FieldCity, repositories.FieldState, repositories.FieldCountry},
			Op:     repositories.OpTextMatch,
			Value:  "Ikeja",
		},
		{Fields: []repositories.Field{repositories.FieldMaxPrice}, Op: repositories.OpLessOrEqual, Value: 2.0},
		{Fields: []repositories.Field{repositories.FieldWifi}, Op: repositories.OpEquals, Value: true},
		{Fields: []repositories.Field{repositories.FieldPaymentOptions}, Op: repositories.OpContains, Value: "cash"},
		{Fields: []repositories.Field{repositories.FieldPaymentOptions}, Op: repositories.OpContains, Value: "bank_transfer"},
		{Fields: []repositories.Field{repositories.FieldOnSiteParking}, Op: repositories.OpEquals, Value: true},
		{Fields: []repositories.Field{repositories.FieldGarageParking}, Op: repositories.OpEquals, Value: true},
	}, q.Predicates)
	assert.Equal(t, repositories.Sort{Field: repositories.FieldMaxPrice, Direction: repositories.SortAsc}, q.Sort)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, 30, q.Offset)
}

func TestTranslateCriteria_NumericPriceAndDuplicateFeatures(t *testing.T) {
	q, err := TranslateCriteria(DiscoveryCriteria{Price: "2500.50", Features: []Feature{"WIFI", FeatureWifi}})
	require.NoError(t, err)

	require.Len(t, q.Predicates, 3)
	assert.Equal(t, 2500.5, q.Predicates[1].Value)
	assert.Equal(t, []repositories.Field{repositories.FieldWifi}, q.Predicates[2].Fields)
}

func TestTranslateCriteria_DistanceSortIsNotPushed(t *testing.T) {
	q, err := TranslateCriteria(DiscoveryCriteria{SortBy: SortByDistance, SortDirection: "asc"})
	require.NoError(t, err)
	assert.Equal(t, repositories.Sort{Field: repositories.FieldCreatedAt, Direction: repositories.SortDesc}, q.Sort)
}

func TestTranslateCriteria_LimitClamped(t *testing.T) {
	q, err := TranslateCriteria(DiscoveryCriteria{Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, 100, q.Limit)

	q, err = NewQueryTranslator(5, 50).Translate(DiscoveryCriteria{})
	require.NoError(t, err)
	assert.Equal(t, 5, q.Limit)
}

func TestTranslateCriteria_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		criteria DiscoveryCriteria
	}{
		{"unknown feature", DiscoveryCriteria{Features: []Feature{"pool"}}},
		{"unknown sort field", DiscoveryCriteria{SortBy: "popularity"}},
		{"unknown direction", DiscoveryCriteria{SortDirection: "sideways"}},
		{"bad price", DiscoveryCriteria{Price: "cheap"}},
		{"negative price", DiscoveryCriteria{Price: "-3"}},
		{"negative offset", DiscoveryCriteria{Offset: -1}},
		{"negative limit", DiscoveryCriteria{Limit: -1}},
		{"latitude without longitude", DiscoveryCriteria{UserLatitude: ptr(1)}},
		{"latitude out of range", DiscoveryCriteria{UserLatitude: ptr(91), UserLongitude: ptr(0)}},
		{"negative distance", DiscoveryCriteria{UserLatitude: ptr(1), UserLongitude: ptr(1), MaxDistanceKm: ptr(-1)}},
		{"NaN latitude", DiscoveryCriteria{UserLatitude: ptr(math.NaN()), UserLongitude: ptr(0)}},
		{"NaN longitude", DiscoveryCriteria{UserLatitude: ptr(0), UserLongitude: ptr(math.NaN())}},
		{"NaN distance", DiscoveryCriteria{UserLatitude: ptr(1), UserLongitude: ptr(1), MaxDistanceKm: ptr(math.NaN())}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TranslateCriteria(tt.criteria)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		})
	}
}

func TestFeaturePredicate(t *testing.T) {
	tests := []struct {
		feature Feature
		field   repositories.Field
		value   interface{}
	}{
		{FeatureOnSiteParking, repositories.FieldOnSiteParking, true},
		{FeatureGarageParking, repositories.FieldGarageParking, true},
		{FeatureWifi, repositories.FieldWifi, true},
		{FeatureBankTransfers, repositories.FieldPaymentOptions, "bank_transfer"},
		{FeatureCash, repositories.FieldPaymentOptions, "cash"},
	}

	for _, tt := range tests {
		t.Run(string(tt.feature), func(t *testing.T) {
			p, err := featurePredicate(tt.feature)
			require.NoError(t, err)
			assert.Equal(t, []repositories.Field{tt.field}, p.Fields)
			assert.Equal(t, tt.value, p.Value)
		})
	}

	_, err := featurePredicate(Feature("pool"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestParsePriceCeiling(t *testing.T) {
	cases := map[string]float64{"$": 1, "$$$$": 4, "15": 15, "$15": 15, " 7.5 ": 7.5}
	for in, want := range cases {
		got, err := ParsePriceCeiling(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePriceCeiling("")
	assert.Error(t, err)
}
