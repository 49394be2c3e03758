package bridge

import (
	"sync"
	"time"
)

const DefaultSweepInterval = 100 * time.Millisecond

// Loop drives the hub at a fixed cadence. The interval trades delivery
// latency against idle CPU cost. The loop keeps running across engine
// restarts; sweeping empty or unbound queues is a no-op.
type Loop struct {
	hub      *Hub
	interval time.Duration

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewLoop(hub *Hub, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Loop{
		hub:      hub,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep goroutine. It may be called once.
func (l *Loop) Start() {
	go l.run()
}

func (l *Loop) run() {
	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			// Final sweep so nothing queued at shutdown is stranded.
			l.hub.Sweep()
			return
		case <-ticker.C:
			l.hub.Sweep()
		}
	}
}

// Stop halts the loop after a final sweep. It is idempotent and blocks
// until the sweep goroutine has exited.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}
