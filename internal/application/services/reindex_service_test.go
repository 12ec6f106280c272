package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bizfinder/discovery/internal/application/services"
	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/repositories"
	"github.com/bizfinder/discovery/tests/mocks"
)

func businessPage(prefix string, n int) []*entities.Business {
	out := make([]*entities.Business, n)
	for i := range out {
		out[i] = &entities.Business{ID: fmt.Sprintf("%s-%d", prefix, i), Status: entities.BusinessStatusActive}
	}
	return out
}

func TestReindexService_ReindexAll_PagesThroughActiveBusinesses(t *testing.T) {
	source := mocks.NewMockBusinessRepository(t)
	index := mocks.NewMockBusinessSearchRepository(t)
	service := services.NewReindexService(source, index)

	source.On("Query", mock.Anything, mock.MatchedBy(func(q repositories.BusinessQuery) bool {
		return q.Offset == 0 && q.Limit == 200 &&
			q.Sort.Direction == repositories.SortAsc &&
			len(q.Predicates) == 1 && q.Predicates[0].Value == "active"
	})).Return(&repositories.QueryResult{Businesses: businessPage("a", 200), Total: 203}, nil).Once()
	source.On("Query", mock.Anything, mock.MatchedBy(func(q repositories.BusinessQuery) bool {
		return q.Offset == 200
	})).Return(&repositories.QueryResult{Businesses: businessPage("b", 3), Total: 203}, nil).Once()

	index.On("Index", mock.Anything, mock.MatchedBy(func(b *entities.Business) bool { return b.ID == "b-1" })).
		Return(errors.New("document too large")).Once()
	index.On("Index", mock.Anything, mock.Anything).Return(nil).Times(202)

	indexed, failed, err := service.ReindexAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 202, indexed)
	assert.Equal(t, 1, failed)
}

func TestReindexService_ReindexAll_StopsOnSourceError(t *testing.T) {
	source := mocks.NewMockBusinessRepository(t)
	service := services.NewReindexService(source, mocks.NewMockBusinessSearchRepository(t))

	sourceErr := errors.New("db down")
	source.On("Query", mock.Anything, mock.Anything).Return(nil, sourceErr).Once()

	_, _, err := service.ReindexAll(context.Background())

	assert.ErrorIs(t, err, sourceErr)
}
