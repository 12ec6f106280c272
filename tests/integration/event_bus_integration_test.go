//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizfinder/discovery/internal/adapters/database"
	"github.com/bizfinder/discovery/internal/adapters/events"
	"github.com/bizfinder/discovery/internal/application/services"
	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/providers"
)

func TestRedisEventBusFanoutIntegration(t *testing.T) {
	if os.Getenv("TEST_REDIS_HOST") == "" {
		t.Skip("Skipping integration test: TEST_REDIS_HOST not set")
	}

	redisClient := newTestRedisClient(t)
	defer redisClient.Close()

	eventBus := events.NewRedisEventBus(redisClient)
	defer eventBus.Close()

	channel := providers.EventChannelBusinessUpdates
	ctx1, cancel1 := context.WithCancel(context.Background())
	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel1()
	defer cancel2()

	sub1, err := eventBus.Subscribe(ctx1, channel)
	require.NoError(t, err)
	sub2, err := eventBus.Subscribe(ctx2, channel)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	event := entities.NewBusinessEvent("biz-redis-1", entities.BusinessEventUpdated, map[string]interface{}{"wifi": true})
	require.NoError(t, eventBus.Publish(context.Background(), channel, event))

	received1 := waitForBusinessEvent(t, sub1)
	received2 := waitForBusinessEvent(t, sub2)

	assert.Equal(t, event.ID, received1.ID)
	assert.Equal(t, event.ID, received2.ID)
	assert.Equal(t, entities.BusinessEventUpdated, received1.EventType)
}

func TestRedisEventBusBusinessSubscriptionIntegration(t *testing.T) {
	if os.Getenv("TEST_REDIS_HOST") == "" {
		t.Skip("Skipping integration test: TEST_REDIS_HOST not set")
	}

	redisClient := newTestRedisClient(t)
	defer redisClient.Close()

	eventBus := events.NewRedisEventBus(redisClient)
	defer eventBus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := eventBus.SubscribeBusiness(ctx, "biz-watched")
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	other := entities.NewBusinessEvent("biz-other", entities.BusinessEventUpdated, nil)
	watched := entities.NewBusinessEvent("biz-watched", entities.BusinessEventHoursUpdated, nil)
	require.NoError(t, eventBus.Publish(context.Background(), providers.EventChannelBusinessUpdates, other))
	require.NoError(t, eventBus.Publish(context.Background(), providers.EventChannelBusinessUpdates, watched))

	received := waitForBusinessEvent(t, sub)
	assert.Equal(t, watched.ID, received.ID)
}

func TestBusinessService_Disable_PublishesEvent(t *testing.T) {
	if os.Getenv("TEST_DB_HOST") == "" || os.Getenv("TEST_REDIS_HOST") == "" {
		t.Skip("Skipping integration test: TEST_DB_HOST or TEST_REDIS_HOST not set")
	}

	dbClient := newTestPostgresClient(t)
	defer dbClient.Close()
	runMigrations(t, dbClient.DB())
	cleanupBusinessData(t, dbClient.DB())

	redisClient := newTestRedisClient(t)
	defer redisClient.Close()

	eventBus := events.NewRedisEventBus(redisClient)
	defer eventBus.Close()

	service := services.NewBusinessService(
		database.NewBusinessAdapter(dbClient),
		database.NewBusinessHoursAdapter(dbClient),
		nil,
		eventBus,
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := eventBus.Subscribe(ctx, providers.EventChannelBusinessUpdates)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	business, err := service.Create(ctx, services.BusinessInput{
		OwnerID: "owner-1",
		Name:    "Event Bakery",
		Address: entities.Address{Line1: "1 Marina", City: "Lagos", Country: "Nigeria"},
	})
	require.NoError(t, err)

	created := waitForBusinessEvent(t, sub)
	assert.Equal(t, business.ID, created.BusinessID)
	assert.Equal(t, entities.BusinessEventCreated, created.EventType)

	_, err = service.Disable(ctx, business.ID)
	require.NoError(t, err)

	disabled := waitForBusinessEvent(t, sub)
	assert.Equal(t, business.ID, disabled.BusinessID)
	assert.Equal(t, entities.BusinessEventDisabled, disabled.EventType)
}
