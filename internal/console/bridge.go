// Package console emulates a blocking line-oriented terminal for an engine
// whose real input source is an asynchronous event feed.
package console

import (
	"sync"
	"time"

	"github.com/ricochet1k/storymesh/internal/queue"
)

const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultRetryCeiling = 1000
)

// StatusFunc is invoked when the bridge's work state changes, e.g. when the
// engine goes idle waiting on input.
type StatusFunc func(message string, processing bool)

// BridgeConfig configures an input bridge.
type BridgeConfig struct {
	Inputs       *queue.InputQueue
	PollInterval time.Duration
	RetryCeiling int
	Status       StatusFunc
}

// Bridge emulates a blocking ReadLine over an InputQueue. A read is bounded
// by RetryCeiling poll attempts at PollInterval each, so the engine thread
// can never hang indefinitely on input.
type Bridge struct {
	inputs       *queue.InputQueue
	pollInterval time.Duration
	retryCeiling int
	status       StatusFunc

	mu      sync.Mutex
	pending []byte
}

func NewBridge(cfg BridgeConfig) *Bridge {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	retryCeiling := cfg.RetryCeiling
	if retryCeiling <= 0 {
		retryCeiling = DefaultRetryCeiling
	}
	return &Bridge{
		inputs:       cfg.Inputs,
		pollInterval: pollInterval,
		retryCeiling: retryCeiling,
		status:       cfg.Status,
	}
}

// ReadLine blocks until an input event arrives, returning it with a
// trailing newline. If no input arrives within the retry window, or the
// input queue has been closed, it returns a bare newline so the engine
// loop keeps running.
func (b *Bridge) ReadLine() string {
	if b.status != nil {
		b.status("Waiting for player input", false)
	}

	timer := time.NewTimer(b.pollInterval)
	defer timer.Stop()

	for attempt := 0; attempt < b.retryCeiling; attempt++ {
		select {
		case input, ok := <-b.inputs.Receive():
			if !ok {
				return "\n"
			}
			if b.status != nil {
				b.status("Processing", true)
			}
			return input + "\n"
		case <-timer.C:
			timer.Reset(b.pollInterval)
		}
	}

	return "\n"
}

// Read implements io.Reader so the bridge can stand in for the engine's
// stdin. It serves the bytes of one line at a time and never returns an
// error.
func (b *Bridge) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.pending) == 0 {
		b.pending = []byte(b.ReadLine())
	}
	n := copy(p, b.pending)
	b.pending = b.pending[n:]
	return n, nil
}
