package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/repositories"
)

// MockBusinessRepository is a testify mock of repositories.BusinessRepository
type MockBusinessRepository struct {
	mock.Mock
}

// NewMockBusinessRepository creates a mock that asserts its expectations on cleanup
func NewMockBusinessRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBusinessRepository {
	m := &MockBusinessRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockBusinessRepository) Create(ctx context.Context, business *entities.Business) error {
	return m.Called(ctx, business).Error(0)
}

func (m *MockBusinessRepository) GetByID(ctx context.Context, id string) (*entities.Business, error) {
	ret := m.Called(ctx, id)
	b, _ := ret.Get(0).(*entities.Business)
	return b, ret.Error(1)
}

func (m *MockBusinessRepository) Update(ctx context.Context, business *entities.Business) error {
	return m.Called(ctx, business).Error(0)
}

func (m *MockBusinessRepository) UpdateRatingAggregate(ctx context.Context, id string, aggregate entities.RatingAggregate, expectedVersion int64) error {
	return m.Called(ctx, id, aggregate, expectedVersion).Error(0)
}

func (m *MockBusinessRepository) Query(ctx context.Context, q repositories.BusinessQuery) (*repositories.QueryResult, error) {
	ret := m.Called(ctx, q)
	r, _ := ret.Get(0).(*repositories.QueryResult)
	return r, ret.Error(1)
}

// MockBusinessSearchRepository is a testify mock of repositories.BusinessSearchRepository
type MockBusinessSearchRepository struct {
	mock.Mock
}

// NewMockBusinessSearchRepository creates a mock that asserts its expectations on cleanup
func NewMockBusinessSearchRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBusinessSearchRepository {
	m := &MockBusinessSearchRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockBusinessSearchRepository) Query(ctx context.Context, q repositories.BusinessQuery) (*repositories.QueryResult, error) {
	ret := m.Called(ctx, q)
	r, _ := ret.Get(0).(*repositories.QueryResult)
	return r, ret.Error(1)
}

func (m *MockBusinessSearchRepository) Index(ctx context.Context, business *entities.Business) error {
	return m.Called(ctx, business).Error(0)
}

func (m *MockBusinessSearchRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockBusinessHoursRepository is a testify mock of repositories.BusinessHoursRepository
type MockBusinessHoursRepository struct {
	mock.Mock
}

// NewMockBusinessHoursRepository creates a mock that asserts its expectations on cleanup
func NewMockBusinessHoursRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBusinessHoursRepository {
	m := &MockBusinessHoursRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockBusinessHoursRepository) ReplaceForBusiness(ctx context.Context, businessID string, hours []*entities.BusinessHours) error {
	return m.Called(ctx, businessID, hours).Error(0)
}

func (m *MockBusinessHoursRepository) ListByBusiness(ctx context.Context, businessID string) ([]*entities.BusinessHours, error) {
	ret := m.Called(ctx, businessID)
	h, _ := ret.Get(0).([]*entities.BusinessHours)
	return h, ret.Error(1)
}

func (m *MockBusinessHoursRepository) ListByBusinessIDs(ctx context.Context, businessIDs []string) (map[string][]*entities.BusinessHours, error) {
	ret := m.Called(ctx, businessIDs)
	h, _ := ret.Get(0).(map[string][]*entities.BusinessHours)
	return h, ret.Error(1)
}

// MockReviewRepository is a testify mock of repositories.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

// NewMockReviewRepository creates a mock that asserts its expectations on cleanup
func NewMockReviewRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockReviewRepository {
	m := &MockReviewRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockReviewRepository) Create(ctx context.Context, review *entities.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	ret := m.Called(ctx, id)
	r, _ := ret.Get(0).(*entities.Review)
	return r, ret.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *entities.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReviewRepository) ListByBusiness(ctx context.Context, businessID string, filter repositories.ReviewFilter) ([]*entities.Review, error) {
	ret := m.Called(ctx, businessID, filter)
	r, _ := ret.Get(0).([]*entities.Review)
	return r, ret.Error(1)
}
