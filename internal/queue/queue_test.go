package queue

import (
	"sync"
	"testing"

	"github.com/ricochet1k/storymesh/internal/domain"
)

func TestQueueFIFO(t *testing.T) {
	q := New()
	q.Push(domain.NewNarration("first"))
	q.Push(domain.NewNarration("second"))
	q.Push(domain.NewNarration("third"))

	drained := q.DrainAll()
	if len(drained) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(drained))
	}
	for i, want := range []string{"first", "second", "third"} {
		if drained[i].Content != want {
			t.Errorf("message %d: expected %q, got %q", i, want, drained[i].Content)
		}
	}
}

func TestDrainAllEmptiesQueue(t *testing.T) {
	q := New()
	q.Push(domain.NewDebug("one", false))

	if got := q.DrainAll(); len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	if got := q.DrainAll(); got != nil {
		t.Fatalf("expected nil from empty drain, got %v", got)
	}
	if q.Len() != 0 {
		t.Fatalf("expected empty queue, got len %d", q.Len())
	}
}

func TestConcurrentProducers(t *testing.T) {
	q := New()

	const producers = 8
	const perProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(domain.NewDebug("msg", false))
			}
		}()
	}
	wg.Wait()

	if got := len(q.DrainAll()); got != producers*perProducer {
		t.Fatalf("expected %d messages, got %d", producers*perProducer, got)
	}
}
