package poller

import (
	"sync"

	"github.com/rovelle/charbot/internal/domain"
)

// Broker fans completed turns out to subscribers. Publishing never blocks:
// a subscriber that falls behind loses events rather than stalling the loop.
type Broker struct {
	mu   sync.Mutex
	subs map[chan domain.TurnEvent]struct{}
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[chan domain.TurnEvent]struct{})}
}

// Subscribe registers a new subscriber and returns its channel plus a
// cancel function that removes the subscription and closes the channel.
func (b *Broker) Subscribe() (<-chan domain.TurnEvent, func()) {
	ch := make(chan domain.TurnEvent, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber with room in its buffer.
func (b *Broker) Publish(ev domain.TurnEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Len returns the current subscriber count.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
