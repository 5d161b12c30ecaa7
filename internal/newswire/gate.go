package newswire

import (
	"sync"
	"time"
)

// Gate enforces a global minimum spacing between outbound generative-text
// calls. It is shared by every caller: effective dispatch starts across all
// concurrent goroutines are serialized to at most one per interval.
//
// Wait reserves the caller's slot under the mutex, then sleeps outside it,
// so a long queue of waiters never holds the lock while blocked. Once a
// caller has reserved a slot it always proceeds; there is no cancellation.
type Gate struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// NewGate builds a gate with the given minimum interval.
func NewGate(interval time.Duration) *Gate {
	return &Gate{
		interval: interval,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Wait blocks until this caller's reserved dispatch slot arrives and
// returns that slot's timestamp. The first caller proceeds immediately.
func (g *Gate) Wait() time.Time {
	g.mu.Lock()
	now := g.now()
	slot := g.last.Add(g.interval)
	if slot.Before(now) {
		slot = now
	}
	g.last = slot
	g.mu.Unlock()

	if d := slot.Sub(now); d > 0 {
		g.sleep(d)
	}
	return slot
}
