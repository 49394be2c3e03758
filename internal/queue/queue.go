package queue

import (
	"sync"

	"github.com/ricochet1k/storymesh/internal/domain"
)

// Queue is an unbounded FIFO of messages, safe for concurrent producers and
// consumers. Push never blocks and never fails; DrainAll atomically removes
// and returns everything queued so far.
type Queue struct {
	mu    sync.Mutex
	items []domain.Message
}

func New() *Queue {
	return &Queue{}
}

func (q *Queue) Push(msg domain.Message) {
	q.mu.Lock()
	q.items = append(q.items, msg)
	q.mu.Unlock()
}

// DrainAll removes and returns all queued messages in FIFO order. Draining
// an empty queue returns nil and is always safe.
func (q *Queue) DrainAll() []domain.Message {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	return items
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
