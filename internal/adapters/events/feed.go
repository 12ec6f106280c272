package events

import (
	"github.com/redis/go-redis/v9"

	"github.com/bizfinder/discovery/internal/domain/entities"
)

const subscriberBuffer = 100

// feed fans one Redis subscription out to local subscribers. A subscriber
// registered with a business id only sees events for that business.
// Callers hold the bus lock around every method.
type feed struct {
	pubsub      *redis.PubSub
	subscribers map[chan *entities.BusinessEvent]string
	closed      bool
}

func newFeed(pubsub *redis.PubSub) *feed {
	return &feed{
		pubsub:      pubsub,
		subscribers: make(map[chan *entities.BusinessEvent]string),
	}
}

func (f *feed) add(businessID string) chan *entities.BusinessEvent {
	ch := make(chan *entities.BusinessEvent, subscriberBuffer)
	f.subscribers[ch] = businessID
	return ch
}

// remove closes ch and reports whether it was still registered
func (f *feed) remove(ch chan *entities.BusinessEvent) bool {
	if _, ok := f.subscribers[ch]; !ok {
		return false
	}
	delete(f.subscribers, ch)
	close(ch)
	return true
}

// deliver hands event to every matching subscriber without blocking and
// returns how many full subscribers missed it
func (f *feed) deliver(event *entities.BusinessEvent) (skipped int) {
	for ch, businessID := range f.subscribers {
		if businessID != "" && businessID != event.BusinessID {
			continue
		}
		select {
		case ch <- event:
		default:
			skipped++
		}
	}
	return skipped
}

// close closes every subscriber and the Redis subscription once
func (f *feed) close() error {
	for ch := range f.subscribers {
		delete(f.subscribers, ch)
		close(ch)
	}
	if f.closed || f.pubsub == nil {
		f.closed = true
		return nil
	}
	f.closed = true
	return f.pubsub.Close()
}
