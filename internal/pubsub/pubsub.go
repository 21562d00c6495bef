package pubsub

import (
	"sync"
	"time"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/logger"
)

// Draft event types
const (
	EventStart     = "draft:start"
	EventPick      = "draft:pick"
	EventUndo      = "draft:undo"
	EventRedo      = "draft:redo"
	EventUndraft   = "draft:undraft"
	EventEnd       = "draft:end"
	EventReset     = "draft:reset"
	EventReconcile = "draft:reconcile"
	EventTuning    = "tuning:reload"
)

// Event is a change notification fanned out to live clients
type Event struct {
	Type      string         `json:"type"`
	SessionID string         `json:"sessionId,omitempty"`
	LeagueID  string         `json:"leagueId,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	At        time.Time      `json:"at"`
}

// Upstream is a cross-instance transport (NATS) that echoes published events back
type Upstream interface {
	Publish(Event)
	Subscribe() chan Event
	Unsubscribe(chan Event)
}

// Publisher is the narrow interface producers depend on
type Publisher interface {
	Publish(Event)
}

const subscriberBuffer = 32

// PubSub fans events out to in-process subscribers, optionally through an upstream
type PubSub struct {
	mu          sync.RWMutex
	subscribers []chan Event
	upstream    Upstream
	upstreamCh  chan Event
}

// New creates a local-only PubSub
func New() *PubSub {
	return &PubSub{}
}

// NewWithUpstream creates a PubSub whose publishes travel through upstream.
// Events arriving from upstream, including our own, reach local subscribers.
func NewWithUpstream(upstream Upstream) *PubSub {
	ps := &PubSub{upstream: upstream, upstreamCh: upstream.Subscribe()}

	go func() {
		logger.Debug("PubSub: Subscribed to upstream")
		for event := range ps.upstreamCh {
			ps.publishLocal(event)
		}
		logger.Debug("PubSub: Upstream channel closed")
	}()

	return ps
}

// Subscribe adds a subscriber. Slow subscribers miss events rather than block publishers.
func (ps *PubSub) Subscribe() chan Event {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	ps.subscribers = append(ps.subscribers, ch)
	logger.Debug("PubSub: Subscriber added", "totalSubscribers", len(ps.subscribers))
	return ch
}

// Unsubscribe removes and closes a subscriber channel. Unknown channels are ignored.
func (ps *PubSub) Unsubscribe(ch chan Event) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for i, sub := range ps.subscribers {
		if sub == ch {
			close(ch)
			ps.subscribers = append(ps.subscribers[:i], ps.subscribers[i+1:]...)
			return
		}
	}
}

// SubscriberCount reports the number of local subscribers
func (ps *PubSub) SubscriberCount() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subscribers)
}

// Publish stamps and delivers an event
func (ps *PubSub) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	if ps.upstream != nil {
		ps.upstream.Publish(event)
		return
	}
	ps.publishLocal(event)
}

func (ps *PubSub) publishLocal(event Event) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, ch := range ps.subscribers {
		select {
		case ch <- event:
		default:
			logger.Warn("PubSub: Dropping event for slow subscriber", "type", event.Type)
		}
	}
}

// Close detaches from the upstream and closes every subscriber
func (ps *PubSub) Close() {
	if ps.upstream != nil && ps.upstreamCh != nil {
		ps.upstream.Unsubscribe(ps.upstreamCh)
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for _, ch := range ps.subscribers {
		close(ch)
	}
	ps.subscribers = nil
}
