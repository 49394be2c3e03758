package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrInputClosed is returned by Send after the input queue has been closed.
var ErrInputClosed = errors.New("input queue is closed")

// InputQueue delivers raw input lines from the transport layer to the
// console bridge.
type InputQueue struct {
	mu     sync.RWMutex
	queue  chan string
	closed bool
}

// NewInputQueue creates a new input queue with the specified buffer size.
func NewInputQueue(queueSize int) *InputQueue {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &InputQueue{
		queue: make(chan string, queueSize),
	}
}

// Send enqueues input for the bridge. It blocks only when the buffer is
// full, and respects context cancellation.
func (q *InputQueue) Send(ctx context.Context, input string) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrInputClosed
	}
	select {
	case q.queue <- input:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive returns the channel to receive inputs from. The channel is closed
// by Close.
func (q *InputQueue) Receive() <-chan string {
	return q.queue
}

// Close closes the input queue. No more inputs can be sent after calling
// Close; it is safe to call more than once.
func (q *InputQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.queue)
}
