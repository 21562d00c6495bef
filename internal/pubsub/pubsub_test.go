package pubsub

import (
	"sync"
	"testing"
	"time"
)

func receive(t *testing.T, ch chan Event, wait time.Duration) Event {
	t.Helper()
	select {
	case e, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return e
	case <-time.After(wait):
		t.Fatal("timeout waiting for event")
	}
	return Event{}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	ps := New()

	ch1 := ps.Subscribe()
	ch2 := ps.Subscribe()
	ch3 := ps.Subscribe()
	if ps.SubscriberCount() != 3 {
		t.Fatalf("expected 3 subscribers, got %d", ps.SubscriberCount())
	}

	ps.Unsubscribe(ch2)
	if ps.SubscriberCount() != 2 {
		t.Errorf("expected 2 subscribers, got %d", ps.SubscriberCount())
	}
	if _, ok := <-ch2; ok {
		t.Error("channel should be closed after unsubscribe")
	}

	ps.Publish(Event{Type: EventPick, SessionID: "s1"})
	for i, ch := range []chan Event{ch1, ch3} {
		if got := receive(t, ch, 100*time.Millisecond); got.SessionID != "s1" {
			t.Errorf("subscriber %d got %+v", i, got)
		}
	}
}

func TestUnsubscribeUnknownChannel(t *testing.T) {
	ps := New()
	ch := make(chan Event, 1)
	ps.Unsubscribe(ch)

	// still open
	ch <- Event{Type: EventPick}
}

func TestPublishStampsTime(t *testing.T) {
	ps := New()
	ch := ps.Subscribe()

	before := time.Now().UTC()
	ps.Publish(Event{Type: EventStart, LeagueID: "lg", Payload: map[string]any{"numTeams": 12}})
	got := receive(t, ch, 100*time.Millisecond)

	if got.At.Before(before) {
		t.Errorf("event time %v before publish %v", got.At, before)
	}
	if got.LeagueID != "lg" || got.Payload["numTeams"] != 12 {
		t.Errorf("got %+v", got)
	}

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ps.Publish(Event{Type: EventEnd, At: fixed})
	if got := receive(t, ch, 100*time.Millisecond); !got.At.Equal(fixed) {
		t.Errorf("explicit time overwritten: %v", got.At)
	}
}

func TestPublishDropsWhenChannelFull(t *testing.T) {
	ps := New()
	ch := ps.Subscribe()

	for i := 0; i < subscriberBuffer+5; i++ {
		ps.Publish(Event{Type: EventPick})
	}

	if len(ch) != subscriberBuffer {
		t.Errorf("expected %d buffered events, got %d", subscriberBuffer, len(ch))
	}
}

func TestConcurrentSubscribeUnsubscribe(t *testing.T) {
	ps := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ch := ps.Subscribe()
			time.Sleep(time.Millisecond)
			ps.Unsubscribe(ch)
		}()
		go func() {
			defer wg.Done()
			ps.Publish(Event{Type: EventPick})
		}()
	}
	wg.Wait()

	if ps.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", ps.SubscriberCount())
	}
}

func TestPublishThroughUpstream(t *testing.T) {
	bus := NewMemoryBus(0)
	ps := NewWithUpstream(bus)
	defer ps.Close()

	ch := ps.Subscribe()
	ps.Publish(Event{Type: EventUndo, SessionID: "s1"})

	got := receive(t, ch, time.Second)
	if got.Type != EventUndo {
		t.Errorf("got %s, want %s", got.Type, EventUndo)
	}
	if h := bus.History(0); len(h) != 1 || h[0].SessionID != "s1" {
		t.Errorf("upstream history = %+v", h)
	}
}

func TestUpstreamEventsReachLocalSubscribers(t *testing.T) {
	bus := NewMemoryBus(0)
	ps := NewWithUpstream(bus)
	defer ps.Close()

	ch1 := ps.Subscribe()
	ch2 := ps.Subscribe()

	// another instance publishing straight to the bus
	bus.Publish(Event{Type: EventReconcile, LeagueID: "lg"})

	for i, ch := range []chan Event{ch1, ch2} {
		if got := receive(t, ch, time.Second); got.Type != EventReconcile {
			t.Errorf("subscriber %d got %s", i, got.Type)
		}
	}
}

func TestCloseDetachesFromUpstream(t *testing.T) {
	bus := NewMemoryBus(0)
	ps := NewWithUpstream(bus)
	ch := ps.Subscribe()

	ps.Close()
	if bus.SubscriberCount() != 0 {
		t.Errorf("bus still has %d subscribers", bus.SubscriberCount())
	}
	if _, ok := <-ch; ok {
		t.Error("local subscriber should be closed")
	}
}

func TestMemoryBusHistory(t *testing.T) {
	bus := NewMemoryBus(3)
	for _, typ := range []string{EventStart, EventPick, EventPick, EventUndo, EventRedo} {
		bus.Publish(Event{Type: typ})
	}

	all := bus.History(0)
	if len(all) != 3 {
		t.Fatalf("retained %d events, want 3", len(all))
	}
	if all[0].Type != EventPick || all[2].Type != EventRedo {
		t.Errorf("history order = %v", all)
	}

	last := bus.History(1)
	if len(last) != 1 || last[0].Type != EventRedo {
		t.Errorf("History(1) = %v", last)
	}

	last[0].Type = "mutated"
	if bus.History(1)[0].Type != EventRedo {
		t.Error("History should return a copy")
	}
}

func TestMemoryBusClose(t *testing.T) {
	bus := NewMemoryBus(0)
	ch := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch; ok {
		t.Error("subscriber should be closed")
	}
}
