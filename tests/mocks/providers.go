package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/pkg/geo"
)

// MockGeolocationProvider is a testify mock of providers.GeolocationProvider
type MockGeolocationProvider struct {
	mock.Mock
}

// NewMockGeolocationProvider creates a mock that asserts its expectations on cleanup
func NewMockGeolocationProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGeolocationProvider {
	m := &MockGeolocationProvider{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockGeolocationProvider) Lookup(ctx context.Context, address string) ([]geo.Coordinates, error) {
	ret := m.Called(ctx, address)
	c, _ := ret.Get(0).([]geo.Coordinates)
	return c, ret.Error(1)
}

// MockCacheProvider is a testify mock of providers.CacheProvider
type MockCacheProvider struct {
	mock.Mock
}

// NewMockCacheProvider creates a mock that asserts its expectations on cleanup
func NewMockCacheProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCacheProvider {
	m := &MockCacheProvider{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	ret := m.Called(ctx, key)
	b, _ := ret.Get(0).([]byte)
	return b, ret.Error(1)
}

func (m *MockCacheProvider) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	return m.Called(ctx, key, value, expirationSeconds).Error(0)
}

func (m *MockCacheProvider) Delete(ctx context.Context, keys ...string) error {
	args := []interface{}{ctx}
	for _, k := range keys {
		args = append(args, k)
	}
	return m.Called(args...).Error(0)
}

func (m *MockCacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	ret := m.Called(ctx, key)
	return ret.Bool(0), ret.Error(1)
}

// MockEventBus is a testify mock of providers.EventBus
type MockEventBus struct {
	mock.Mock
}

// NewMockEventBus creates a mock that asserts its expectations on cleanup
func NewMockEventBus(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockEventBus {
	m := &MockEventBus{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.BusinessEvent) error {
	return m.Called(ctx, channel, event).Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.BusinessEvent, error) {
	ret := m.Called(ctx, channel)
	ch, _ := ret.Get(0).(<-chan *entities.BusinessEvent)
	return ch, ret.Error(1)
}

func (m *MockEventBus) SubscribeBusiness(ctx context.Context, businessID string) (<-chan *entities.BusinessEvent, error) {
	ret := m.Called(ctx, businessID)
	ch, _ := ret.Get(0).(<-chan *entities.BusinessEvent)
	return ch, ret.Error(1)
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	return m.Called(ctx, channel).Error(0)
}

func (m *MockEventBus) Close() error {
	return m.Called().Error(0)
}
