//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/bizfinder/discovery/internal/adapters/database"
	"github.com/bizfinder/discovery/internal/application/services"
	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/repositories"
	"github.com/bizfinder/discovery/internal/infrastructure/clients/postgres"
	apperrors "github.com/bizfinder/discovery/pkg/errors"
)

type BusinessAdapterIntegrationTestSuite struct {
	suite.Suite
	client     *postgres.Client
	businesses *database.BusinessAdapter
	hours      *database.BusinessHoursAdapter
	reviews    *database.ReviewAdapter
	ctx        context.Context
}

func (s *BusinessAdapterIntegrationTestSuite) SetupSuite() {
	if os.Getenv("TEST_DB_HOST") == "" {
		s.T().Skip("Skipping integration test: TEST_DB_HOST not set")
	}

	s.ctx = context.Background()
	s.client = newTestPostgresClient(s.T())
	runMigrations(s.T(), s.client.DB())

	s.businesses = database.NewBusinessAdapter(s.client)
	s.hours = database.NewBusinessHoursAdapter(s.client)
	s.reviews = database.NewReviewAdapter(s.client)
}

func (s *BusinessAdapterIntegrationTestSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *BusinessAdapterIntegrationTestSuite) SetupTest() {
	cleanupBusinessData(s.T(), s.client.DB())
}

func (s *BusinessAdapterIntegrationTestSuite) newBusiness(name, city string, categories ...string) *entities.Business {
	now := time.Now().UTC().Truncate(time.Millisecond)
	b := &entities.Business{
		ID:             uuid.NewString(),
		OwnerID:        "owner-1",
		Name:           name,
		Categories:     categories,
		Address:        entities.Address{Line1: "1 Test Street", City: city, Country: "Nigeria"},
		PaymentOptions: []entities.PaymentOption{entities.PaymentOptionCash},
		Status:         entities.BusinessStatusActive,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.Require().NoError(s.businesses.Create(s.ctx, b))
	return b
}

func (s *BusinessAdapterIntegrationTestSuite) TestCreateAndGetByID() {
	created := s.newBusiness("Roundtrip Salon", "Lagos", "Salon", "Beauty")

	got, err := s.businesses.GetByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created.Name, got.Name)
	s.Equal([]string{"Salon", "Beauty"}, got.Categories)
	s.Equal(entities.BusinessStatusActive, got.Status)

	_, err = s.businesses.GetByID(s.ctx, uuid.NewString())
	s.True(apperrors.IsNotFound(err))
}

func (s *BusinessAdapterIntegrationTestSuite) TestQuery_FiltersAndCounts() {
	s.newBusiness("Lagos Grill", "Lagos", "Restaurant")
	s.newBusiness("Ikeja Grill", "Ikeja, Lagos", "Restaurant")
	s.newBusiness("Abuja Barber", "Abuja", "Barber")

	query, err := services.TranslateCriteria(services.DiscoveryCriteria{Category: "restaurant", Location: "lagos", Limit: 1})
	s.Require().NoError(err)

	result, err := s.businesses.Query(s.ctx, query)
	s.Require().NoError(err)
	s.Len(result.Businesses, 1)
	s.Equal(2, result.Total)
}

func (s *BusinessAdapterIntegrationTestSuite) TestUpdateRatingAggregate_VersionCheck() {
	b := s.newBusiness("Versioned Cafe", "Lagos", "Cafe")

	err := s.businesses.UpdateRatingAggregate(s.ctx, b.ID, entities.RatingAggregate{Rating: 4, ReviewCount: 2}, b.Version)
	s.Require().NoError(err)

	err = s.businesses.UpdateRatingAggregate(s.ctx, b.ID, entities.RatingAggregate{Rating: 1, ReviewCount: 1}, b.Version)
	s.True(apperrors.IsConflict(err))

	got, err := s.businesses.GetByID(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(4.0, got.Rating)
	s.Equal(2, got.ReviewCount)
}

func (s *BusinessAdapterIntegrationTestSuite) TestHoursReplaceAndList() {
	a := s.newBusiness("Hours A", "Lagos", "Shop")
	b := s.newBusiness("Hours B", "Lagos", "Shop")

	s.Require().NoError(s.hours.ReplaceForBusiness(s.ctx, a.ID, []*entities.BusinessHours{
		{BusinessID: a.ID, Day: entities.Monday, OpenTime: "09:00", CloseTime: "17:00"},
		{BusinessID: a.ID, Day: entities.Sunday, IsClosed: true},
	}))
	s.Require().NoError(s.hours.ReplaceForBusiness(s.ctx, a.ID, []*entities.BusinessHours{
		{BusinessID: a.ID, Day: entities.Tuesday, OpenTime: "10:00", CloseTime: "18:00"},
	}))
	s.Require().NoError(s.hours.ReplaceForBusiness(s.ctx, b.ID, []*entities.BusinessHours{
		{BusinessID: b.ID, Day: entities.Friday, OpenTime: "08:00", CloseTime: "12:00"},
	}))

	own, err := s.hours.ListByBusiness(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Require().Len(own, 1)
	s.Equal(entities.Tuesday, own[0].Day)

	byID, err := s.hours.ListByBusinessIDs(s.ctx, []string{a.ID, b.ID})
	s.Require().NoError(err)
	s.Len(byID[a.ID], 1)
	s.Len(byID[b.ID], 1)
}

func (s *BusinessAdapterIntegrationTestSuite) TestReviews_TopLevelFilterAndCascade() {
	b := s.newBusiness("Reviewed Diner", "Lagos", "Restaurant")
	now := time.Now().UTC()

	parent := &entities.Review{ID: uuid.NewString(), BusinessID: b.ID, AuthorID: "u1", Rating: 5, Text: "Great", CreatedAt: now, UpdatedAt: now}
	s.Require().NoError(s.reviews.Create(s.ctx, parent))
	reply := &entities.Review{ID: uuid.NewString(), BusinessID: b.ID, AuthorID: "owner-1", Text: "Thanks", ParentReviewID: &parent.ID, CreatedAt: now, UpdatedAt: now}
	s.Require().NoError(s.reviews.Create(s.ctx, reply))

	all, err := s.reviews.ListByBusiness(s.ctx, b.ID, repositories.ReviewFilter{})
	s.Require().NoError(err)
	s.Len(all, 2)

	topLevel, err := s.reviews.ListByBusiness(s.ctx, b.ID, repositories.ReviewFilter{TopLevelOnly: true})
	s.Require().NoError(err)
	s.Require().Len(topLevel, 1)
	s.Equal(parent.ID, topLevel[0].ID)

	s.Require().NoError(s.reviews.Delete(s.ctx, parent.ID))
	_, err = s.reviews.GetByID(s.ctx, reply.ID)
	s.True(apperrors.IsNotFound(err))
}

func TestBusinessAdapterIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(BusinessAdapterIntegrationTestSuite))
}
