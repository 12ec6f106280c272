package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/bizfinder/discovery/internal/api/handlers"
	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/providers"
	"github.com/bizfinder/discovery/tests/mocks"
)

func closedEventStream(events ...*entities.BusinessEvent) <-chan *entities.BusinessEvent {
	ch := make(chan *entities.BusinessEvent, len(events))
	for _, e := range events {
		ch <- e
	}
	close(ch)
	return ch
}

func TestSSEHandler_StreamBusinessUpdates_SubscribesToBusiness(t *testing.T) {
	bus := mocks.NewMockEventBus(t)
	handler := handlers.NewSSEHandler(bus)

	stream := closedEventStream(
		entities.NewBusinessEvent("biz-1", entities.BusinessEventUpdated, nil),
		entities.NewBusinessEvent("biz-1", entities.BusinessEventRatingUpdated, nil),
	)
	bus.On("SubscribeBusiness", mock.Anything, "biz-1").Return(stream, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/stream/businesses/biz-1", nil)
	rec := serve("GET /api/stream/businesses/{id}", handler.StreamBusinessUpdates, req)

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "event: connected\n")
	assert.Contains(t, body, "event: updated\n")
	assert.Contains(t, body, "event: rating_updated\n")
	assert.Equal(t, 0, handler.ClientCount())
	bus.AssertNotCalled(t, "Subscribe", mock.Anything, mock.Anything)
}

func TestSSEHandler_StreamUpdates_ForwardsEverything(t *testing.T) {
	bus := mocks.NewMockEventBus(t)
	handler := handlers.NewSSEHandler(bus)

	stream := closedEventStream(
		entities.NewBusinessEvent("biz-1", entities.BusinessEventCreated, nil),
		entities.NewBusinessEvent("biz-2", entities.BusinessEventHoursUpdated, nil),
	)
	bus.On("Subscribe", mock.Anything, providers.EventChannelBusinessUpdates).Return(stream, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/stream/businesses", nil)
	rec := serve("GET /api/stream/businesses", handler.StreamUpdates, req)

	body := rec.Body.String()
	assert.Equal(t, 3, strings.Count(body, "event: "))
	assert.Contains(t, body, "event: created\n")
	assert.Contains(t, body, "event: hours_updated\n")
}

func TestSSEHandler_SubscribeFailure(t *testing.T) {
	bus := mocks.NewMockEventBus(t)
	handler := handlers.NewSSEHandler(bus)

	bus.On("Subscribe", mock.Anything, providers.EventChannelBusinessUpdates).Return(nil, errors.New("redis down")).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/stream/businesses", nil)
	rec := serve("GET /api/stream/businesses", handler.StreamUpdates, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
