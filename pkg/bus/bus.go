package bus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrBusClosed is returned when publishing to a closed MessageBus.
var ErrBusClosed = errors.New("message bus closed")

// MessageBus is the FIFO command queue between the poller and the
// consumer. Publishing never blocks; the queue is unbounded. Single
// producer, single consumer.
type MessageBus struct {
	mu      sync.Mutex
	pending []Command
	wake    chan struct{}
	done    chan struct{}
	closed  atomic.Bool
}

func NewMessageBus() *MessageBus {
	return &MessageBus{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (mb *MessageBus) Publish(cmd Command) error {
	if mb.closed.Load() {
		return ErrBusClosed
	}
	mb.mu.Lock()
	mb.pending = append(mb.pending, cmd)
	mb.mu.Unlock()
	select {
	case mb.wake <- struct{}{}:
	default:
	}
	return nil
}

// Consume returns the next queued command in publish order. Pending
// commands are drained before cancellation or close is honored, so a
// consumer told to stop still finishes what was already accepted.
// Returns ok=false once the queue is empty and the context is done or
// the bus is closed.
func (mb *MessageBus) Consume(ctx context.Context) (Command, bool) {
	for {
		mb.mu.Lock()
		if len(mb.pending) > 0 {
			cmd := mb.pending[0]
			if len(mb.pending) == 1 {
				mb.pending = nil
			} else {
				mb.pending = mb.pending[1:]
			}
			mb.mu.Unlock()
			return cmd, true
		}
		mb.mu.Unlock()

		select {
		case <-mb.wake:
		case <-mb.done:
			return Command{}, false
		case <-ctx.Done():
			return Command{}, false
		}
	}
}

// Len reports the number of commands waiting to be consumed.
func (mb *MessageBus) Len() int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return len(mb.pending)
}

func (mb *MessageBus) Close() {
	if mb.closed.CompareAndSwap(false, true) {
		close(mb.done)
	}
}
