package app

import (
	"sync"

	"ruleta-service/internal/domain"
)

// Broadcaster fans game state snapshots out to subscribers.
// A slow subscriber loses its oldest buffered snapshots first; the newest
// one published is always delivered.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[chan domain.GameState]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subscribers: make(map[chan domain.GameState]struct{})}
}

// Subscribe registers a channel primed with initial.
// The caller must invoke the returned cancel function to avoid leaks.
func (b *Broadcaster) Subscribe(initial domain.GameState) (<-chan domain.GameState, func()) {
	ch := make(chan domain.GameState, 8)
	ch <- initial

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *Broadcaster) Publish(state domain.GameState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case ch <- state:
		default:
			// full buffer: drop the oldest snapshot to make room
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
}

// Subscribers reports how many channels are registered.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}
