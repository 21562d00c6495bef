package pubsub

import (
	"sync"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/logger"
)

// MemoryBus is an in-process Upstream that keeps a bounded history of published
// events, the way a JetStream stream would. It is used when NATS is disabled and in tests.
type MemoryBus struct {
	mu          sync.RWMutex
	subscribers []chan Event
	history     []Event
	maxHistory  int
}

// NewMemoryBus creates a bus retaining up to maxHistory events (1000 when <= 0)
func NewMemoryBus(maxHistory int) *MemoryBus {
	if maxHistory <= 0 {
		maxHistory = 1000
	}
	return &MemoryBus{maxHistory: maxHistory}
}

func (b *MemoryBus) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.history = append(b.history, event)
	if len(b.history) > b.maxHistory {
		b.history = b.history[len(b.history)-b.maxHistory:]
	}

	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			logger.Warn("Memory bus: Skipping slow subscriber", "event_type", event.Type)
		}
	}
}

func (b *MemoryBus) Subscribe() chan Event {
	ch := make(chan Event, 100)
	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()
	return ch
}

func (b *MemoryBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subscribers {
		if sub == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

// History returns the last n retained events, oldest first. n <= 0 returns all.
func (b *MemoryBus) History(n int) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start := 0
	if n > 0 && n < len(b.history) {
		start = len(b.history) - n
	}
	out := make([]Event, len(b.history)-start)
	copy(out, b.history[start:])
	return out
}

// SubscriberCount returns the number of attached channels
func (b *MemoryBus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes every subscription
func (b *MemoryBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}
