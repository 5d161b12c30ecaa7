// Package events provides in-process pub/sub between the ingestion worker
// and the request-serving layer.
package events

import "sync"

// IncidentEvent announces a newly stored incident to live subscribers.
type IncidentEvent struct {
	ID       int64   `json:"id"`
	Type     string  `json:"type"`
	Location string  `json:"location"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// Bus fans incident events out to subscribers. Slow subscribers drop
// events rather than blocking the publisher.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan IncidentEvent]struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[chan IncidentEvent]struct{})}
}

// Subscribe registers a buffered channel for incoming events. Callers must
// Unsubscribe when done.
func (b *Bus) Subscribe() chan IncidentEvent {
	ch := make(chan IncidentEvent, 16)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (b *Bus) Unsubscribe(ch chan IncidentEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// Publish delivers the event to every subscriber that has buffer room.
func (b *Bus) Publish(ev IncidentEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
