package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/providers"
	redisclient "github.com/bizfinder/discovery/internal/infrastructure/clients/redis"
)

var errBusClosed = errors.New("event bus is closed")

// RedisEventBus implements providers.EventBus on Redis Pub/Sub. Each channel
// has one Redis subscription; per-business subscribers share the updates
// channel and are filtered locally.
type RedisEventBus struct {
	client *redisclient.Client
	feeds  map[string]*feed
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client: client,
		feeds:  make(map[string]*feed),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Publish publishes an event to all subscribers
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.BusinessEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event on %s: %w", channel, err)
	}

	log.Debug().Str("channel", channel).Str("event_id", event.ID).
		Str("business_id", event.BusinessID).Str("event_type", string(event.EventType)).
		Msg("published business event")
	return nil
}

// Subscribe subscribes to every event on a channel. The returned channel is
// closed when ctx is cancelled or the bus shuts down.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.BusinessEvent, error) {
	return b.subscribe(ctx, channel, "")
}

// SubscribeBusiness subscribes to update events for a single business
func (b *RedisEventBus) SubscribeBusiness(ctx context.Context, businessID string) (<-chan *entities.BusinessEvent, error) {
	if businessID == "" {
		return nil, errors.New("business id is required")
	}
	return b.subscribe(ctx, providers.EventChannelBusinessUpdates, businessID)
}

func (b *RedisEventBus) subscribe(ctx context.Context, channel, businessID string) (<-chan *entities.BusinessEvent, error) {
	b.mu.Lock()
	if b.ctx.Err() != nil {
		b.mu.Unlock()
		return nil, errBusClosed
	}
	f, exists := b.feeds[channel]
	if !exists {
		f = newFeed(b.client.Client().Subscribe(b.ctx, channel))
		b.feeds[channel] = f
		go b.receiveMessages(channel, f)
	}
	eventChan := f.add(businessID)
	count := len(f.subscribers)
	b.mu.Unlock()

	log.Info().Str("channel", channel).Str("business_id", businessID).
		Int("subscribers", count).Msg("subscribed to channel")

	go func() {
		select {
		case <-ctx.Done():
		case <-b.ctx.Done():
		}
		b.removeSubscriber(channel, f, eventChan)
	}()

	return eventChan, nil
}

func (b *RedisEventBus) receiveMessages(channel string, f *feed) {
	defer func() {
		if err := b.dropFeed(channel, f); err != nil {
			log.Error().Err(err).Str("channel", channel).Msg("failed to clean up channel")
		}
	}()

	ch := f.pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event entities.BusinessEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("dropping undecodable event")
				continue
			}

			b.mu.RLock()
			skipped := f.deliver(&event)
			b.mu.RUnlock()
			if skipped > 0 {
				log.Warn().Str("channel", channel).Str("event_id", event.ID).
					Int("skipped", skipped).Msg("subscriber channels full, skipping event")
			}
		}
	}
}

// removeSubscriber drops one subscriber and the Redis subscription once the
// feed is empty
func (b *RedisEventBus) removeSubscriber(channel string, f *feed, eventChan chan *entities.BusinessEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !f.remove(eventChan) || len(f.subscribers) > 0 {
		return
	}
	if b.feeds[channel] == f {
		delete(b.feeds, channel)
	}
	if err := f.close(); err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("failed to close subscription")
		return
	}
	log.Info().Str("channel", channel).Msg("closed subscription")
}

// dropFeed closes f and forgets it unless the channel has been resubscribed
// with a newer feed in the meantime
func (b *RedisEventBus) dropFeed(channel string, f *feed) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.feeds[channel] == f {
		delete(b.feeds, channel)
	}
	if err := f.close(); err != nil {
		return fmt.Errorf("failed to close subscription %s: %w", channel, err)
	}
	return nil
}

// Unsubscribe closes every subscriber of a channel
func (b *RedisEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.RLock()
	f, ok := b.feeds[channel]
	b.mu.RUnlock()
	if !ok {
		return nil
	}
	return b.dropFeed(channel, f)
}

// Close closes the event bus and all subscriptions
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.RLock()
	feeds := make(map[string]*feed, len(b.feeds))
	for channel, f := range b.feeds {
		feeds[channel] = f
	}
	b.mu.RUnlock()

	var errs []error
	for channel, f := range feeds {
		if err := b.dropFeed(channel, f); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing event bus: %w", errors.Join(errs...))
	}

	log.Info().Msg("event bus closed")
	return nil
}
