package tts

import (
	"sync"
	"time"
)

// DefaultRateDebounce is how long rate input must settle before it is
// committed.
const DefaultRateDebounce = 500 * time.Millisecond

// Debouncer schedules at most one pending action. Each Schedule cancels the
// previous timer and bumps the generation, so a timer that fired before it
// could be stopped is recognized as stale by its generation.
type Debouncer struct {
	mu         sync.Mutex
	delay      time.Duration
	timer      *time.Timer
	generation uint64
}

// NewDebouncer creates a debouncer with the given delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule replaces any pending action with fire, called with the new
// generation once the delay elapses.
func (d *Debouncer) Schedule(fire func(generation uint64)) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.generation++
	gen := d.generation
	d.timer = time.AfterFunc(d.delay, func() { fire(gen) })
	return gen
}

// Current reports whether generation belongs to the latest Schedule call.
func (d *Debouncer) Current(generation uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return generation == d.generation
}

// Pending reports whether the latest Schedule is still unhandled. A timer
// that has fired stays pending until Done is called with its generation or
// Stop cancels it.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Done clears the pending timer once its generation has been handled.
func (d *Debouncer) Done(generation uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if generation == d.generation {
		d.timer = nil
	}
}

// Stop cancels any pending action and invalidates its generation.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.generation++
}
