package providers

import (
	"context"

	"github.com/bizfinder/discovery/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.BusinessEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.BusinessEvent, error)

	// SubscribeBusiness subscribes to update events for one business
	SubscribeBusiness(ctx context.Context, businessID string) (<-chan *entities.BusinessEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelBusinessUpdates carries every listing change
const EventChannelBusinessUpdates = "business:updates"
