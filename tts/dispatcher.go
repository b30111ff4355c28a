package tts

import (
	"context"
	"sync"
)

// Dispatcher is an unbounded FIFO of commands with a single consumer.
// Producers never block, so engine callbacks can enqueue from audio
// goroutines while the consumer is busy synthesizing.
type Dispatcher struct {
	mu     sync.Mutex
	queue  []Command
	signal chan struct{}
	closed bool
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		signal: make(chan struct{}, 1),
	}
}

// Send enqueues cmd. It returns ErrDispatcherClosed after Close.
func (d *Dispatcher) Send(cmd Command) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.queue = append(d.queue, cmd)
	d.mu.Unlock()

	d.wake()
	return nil
}

// Next blocks until a command is available, the dispatcher is closed and
// drained, or ctx is done.
func (d *Dispatcher) Next(ctx context.Context) (Command, error) {
	for {
		d.mu.Lock()
		if len(d.queue) > 0 {
			cmd := d.queue[0]
			d.queue[0] = nil
			d.queue = d.queue[1:]
			d.mu.Unlock()
			return cmd, nil
		}
		closed := d.closed
		d.mu.Unlock()

		if closed {
			return nil, ErrDispatcherClosed
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-d.signal:
		}
	}
}

// Len returns the number of queued commands.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Close rejects further sends. Queued commands can still be drained.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wake()
}

func (d *Dispatcher) wake() {
	select {
	case d.signal <- struct{}{}:
	default:
	}
}
