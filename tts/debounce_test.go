package tts

import (
	"sync"
	"testing"
	"time"
)

func TestDebouncerCollapsesBurst(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var mu sync.Mutex
	var fired []uint64
	fire := func(gen uint64) {
		mu.Lock()
		defer mu.Unlock()
		if d.Current(gen) {
			fired = append(fired, gen)
		}
	}

	var last uint64
	for i := 0; i < 5; i++ {
		last = d.Schedule(fire)
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(fired) != 1 || fired[0] != last {
		t.Errorf("expected exactly generation %d to fire, got %v", last, fired)
	}
}

func TestDebouncerStaleGeneration(t *testing.T) {
	d := NewDebouncer(time.Hour)
	first := d.Schedule(func(uint64) {})
	second := d.Schedule(func(uint64) {})

	if d.Current(first) {
		t.Error("replaced generation should be stale")
	}
	if !d.Current(second) {
		t.Error("latest generation should be current")
	}
	if !d.Pending() {
		t.Error("expected pending timer")
	}

	d.Done(first)
	if !d.Pending() {
		t.Error("Done with a stale generation must not clear the pending timer")
	}
	d.Done(second)
	if d.Pending() {
		t.Error("expected no pending timer after Done")
	}
}

func TestDebouncerPendingUntilDone(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	fired := make(chan uint64, 1)
	gen := d.Schedule(func(g uint64) { fired <- g })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
	if !d.Pending() {
		t.Error("a fired timer stays pending until its commit is handled")
	}

	d.Done(gen)
	if d.Pending() {
		t.Error("expected no pending timer after Done")
	}

	d.Schedule(func(uint64) {})
	d.Stop()
	if d.Pending() {
		t.Error("expected no pending timer after Stop")
	}
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	fired := make(chan uint64, 1)
	gen := d.Schedule(func(g uint64) { fired <- g })
	d.Stop()

	if d.Current(gen) {
		t.Error("Stop should invalidate the pending generation")
	}
	select {
	case <-fired:
		t.Error("stopped timer fired")
	case <-time.After(60 * time.Millisecond):
	}
}
