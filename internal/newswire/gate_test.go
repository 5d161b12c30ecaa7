package newswire

import (
	"sort"
	"sync"
	"testing"
	"time"
)

func TestGateFirstCallerImmediate(t *testing.T) {
	g := NewGate(4 * time.Second)
	slept := time.Duration(0)
	g.sleep = func(d time.Duration) { slept += d }

	start := time.Now()
	slot := g.Wait()
	if slept != 0 {
		t.Fatalf("first caller should not sleep, slept %v", slept)
	}
	if slot.Before(start) {
		t.Fatalf("slot %v before start %v", slot, start)
	}
}

func TestGateReservesSpacedSlots(t *testing.T) {
	const interval = 4 * time.Second
	g := NewGate(interval)
	g.sleep = func(time.Duration) {} // slots are what matters, not wall time

	var slots []time.Time
	for i := 0; i < 5; i++ {
		slots = append(slots, g.Wait())
	}
	for i := 1; i < len(slots); i++ {
		if gap := slots[i].Sub(slots[i-1]); gap < interval {
			t.Fatalf("slots %d and %d only %v apart", i-1, i, gap)
		}
	}
}

func TestGateConcurrentCallersSpaced(t *testing.T) {
	const (
		interval = 4 * time.Second
		callers  = 8
	)
	g := NewGate(interval)
	g.sleep = func(time.Duration) {}

	var mu sync.Mutex
	var slots []time.Time
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slot := g.Wait()
			mu.Lock()
			slots = append(slots, slot)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })
	for i := 1; i < len(slots); i++ {
		if gap := slots[i].Sub(slots[i-1]); gap < interval {
			t.Fatalf("concurrent dispatches %v apart, want >= %v", gap, interval)
		}
	}
}

func TestGateRealSleepSpacing(t *testing.T) {
	const interval = 20 * time.Millisecond
	g := NewGate(interval)

	var mu sync.Mutex
	var starts []time.Time
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Wait()
			mu.Lock()
			starts = append(starts, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	for i := 1; i < len(starts); i++ {
		// Allow a little scheduler slop below the nominal interval.
		if gap := starts[i].Sub(starts[i-1]); gap < interval-2*time.Millisecond {
			t.Fatalf("dispatches %v apart, want about %v", gap, interval)
		}
	}
}
