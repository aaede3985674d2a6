package events

import (
	"log/slog"
	"sync"
	"time"
)

type Type string

const (
	SneakerCreated Type = "sneaker.created"
	RatingAdded    Type = "rating.added"
	RatingDeleted  Type = "rating.deleted"
	UserUpdated    Type = "user.updated"
)

// Event announces a change. Subscribers re-read the affected resource.
type Event struct {
	Type      Type      `json:"type"`
	ID        string    `json:"id"`
	SneakerID string    `json:"sneakerId,omitempty"`
	At        time.Time `json:"at"`
}

type Publisher interface {
	Publish(event Event)
}

// Discard drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) {}

// Broker fans events out to in-process subscribers. Publishing never
// blocks: a subscriber whose buffer is full misses the event.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	buffer      int
	closed      bool
}

func NewBroker(buffer int) *Broker {
	if buffer < 1 {
		buffer = 1
	}
	return &Broker{
		subscribers: make(map[chan Event]struct{}),
		buffer:      buffer,
	}
}

// Subscribe registers a listener. The returned func unregisters it and
// closes the channel; calling it more than once is safe.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	b.subscribers[ch] = struct{}{}
	count := len(b.subscribers)
	b.mu.Unlock()

	slog.Debug("event subscriber added", "subscribers", count)

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			// Close may have released it already
			if _, ok := b.subscribers[ch]; !ok {
				return
			}
			delete(b.subscribers, ch)
			close(ch)

			slog.Debug("event subscriber removed", "subscribers", len(b.subscribers))
		})
	}
}

// Close ends every subscription so open streams can finish during shutdown.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for ch := range b.subscribers {
		delete(b.subscribers, ch)
		close(ch)
	}
}

func (b *Broker) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			slog.Warn("event dropped for slow subscriber", "type", event.Type, "id", event.ID)
		}
	}
}

// Subscribers reports how many listeners are registered.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
