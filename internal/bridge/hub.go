package bridge

import (
	"sync"
	"time"

	"github.com/ricochet1k/storymesh/internal/domain"
	"github.com/ricochet1k/storymesh/internal/metrics"
	"github.com/ricochet1k/storymesh/internal/queue"
	"github.com/ricochet1k/storymesh/pkg/wire"
)

// Observer is an attached remote client receiving broadcast envelopes.
// Send must not block indefinitely; a send failure detaches the observer.
type Observer interface {
	ID() string
	Send(env wire.ServerEnvelope) error
}

// Hub fans classified messages out to attached observers. It holds the
// current run's queues; draining and observer delivery share one lock, so a
// message is delivered to each observer exactly once — either as attach-time
// replay or during a sweep, never both.
type Hub struct {
	mu        sync.Mutex
	observers map[string]Observer
	narration *queue.Queue
	debug     *queue.Queue
	status    wire.StatusUpdate
}

func NewHub() *Hub {
	return &Hub{observers: make(map[string]Observer)}
}

// Bind points the hub at a run's freshly constructed queues. The previous
// queues are dropped; sweeping continues seamlessly across runs.
func (h *Hub) Bind(narration, debug *queue.Queue) {
	h.mu.Lock()
	h.narration = narration
	h.debug = debug
	h.mu.Unlock()
}

// Attach registers an observer. Anything still queued is replayed to it, in
// per-channel order, before it joins live fan-out.
func (h *Hub) Attach(obs Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, msg := range drain(h.narration) {
		if obs.Send(toEnvelope(msg)) != nil {
			return
		}
	}
	for _, msg := range drain(h.debug) {
		if obs.Send(toEnvelope(msg)) != nil {
			return
		}
	}

	h.observers[obs.ID()] = obs
	metrics.ObserversAttached.Set(float64(len(h.observers)))
}

func (h *Hub) Detach(id string) {
	h.mu.Lock()
	delete(h.observers, id)
	metrics.ObserversAttached.Set(float64(len(h.observers)))
	h.mu.Unlock()
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}

// Sweep drains both queues and forwards every message, in per-channel FIFO
// order, to all attached observers. A failed delivery detaches only that
// observer; the sweep always completes.
func (h *Hub) Sweep() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deliver(drain(h.narration))
	h.deliver(drain(h.debug))
}

// Enqueue pushes a message onto the bound queue for its channel. Used by
// the transport layer to echo user input to every observer.
func (h *Hub) Enqueue(msg domain.Message) {
	h.mu.Lock()
	q := h.narration
	if msg.Channel == domain.ChannelDebug {
		q = h.debug
	}
	h.mu.Unlock()
	if q != nil {
		q.Push(msg)
	}
}

// UpdateStatus records the engine's work state and pushes it to all
// observers immediately, outside the queue cadence.
func (h *Hub) UpdateStatus(message string, processing bool) {
	update := wire.StatusUpdate{Message: message, IsProcessing: processing}
	env := wire.ServerEnvelope{Type: wire.ServerMessageTypeStatus, Payload: update}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = update
	for id, obs := range h.observers {
		if obs.Send(env) != nil {
			delete(h.observers, id)
		}
	}
	metrics.ObserversAttached.Set(float64(len(h.observers)))
}

// Status returns the most recent status update.
func (h *Hub) Status() wire.StatusUpdate {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// deliver forwards one channel's drained batch. Caller holds h.mu.
func (h *Hub) deliver(messages []domain.Message) {
	for _, msg := range messages {
		env := toEnvelope(msg)
		for id, obs := range h.observers {
			if err := obs.Send(env); err != nil {
				metrics.BroadcastFailures.Inc()
				delete(h.observers, id)
			}
		}
		metrics.MessagesBroadcast.WithLabelValues(msg.Channel.String()).Inc()
	}
	metrics.ObserversAttached.Set(float64(len(h.observers)))
}

func drain(q *queue.Queue) []domain.Message {
	if q == nil {
		return nil
	}
	return q.DrainAll()
}

func toEnvelope(msg domain.Message) wire.ServerEnvelope {
	envType := wire.ServerMessageTypeGameOutput
	if msg.Channel == domain.ChannelDebug {
		envType = wire.ServerMessageTypeDebugOutput
	}
	return wire.ServerEnvelope{
		Type: envType,
		Payload: wire.Message{
			Type:      wire.MessageType(msg.Kind),
			Content:   msg.Content,
			Timestamp: msg.Timestamp.Format(time.RFC3339),
			IsError:   msg.IsError,
		},
	}
}
