package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/ricochet1k/storymesh/internal/classifier"
	"github.com/ricochet1k/storymesh/internal/console"
	"github.com/ricochet1k/storymesh/internal/domain"
	"github.com/ricochet1k/storymesh/internal/engine"
	"github.com/ricochet1k/storymesh/internal/metrics"
	"github.com/ricochet1k/storymesh/internal/queue"
)

// RunState tracks the lifecycle of an engine run.
type RunState int

const (
	RunStateNotStarted RunState = iota
	RunStateRunning
	RunStateCompleted
	RunStateFaulted
	RunStateRestored
)

func (s RunState) String() string {
	switch s {
	case RunStateNotStarted:
		return "not_started"
	case RunStateRunning:
		return "running"
	case RunStateCompleted:
		return "completed"
	case RunStateFaulted:
		return "faulted"
	case RunStateRestored:
		return "restored"
	default:
		return "unknown"
	}
}

var ErrAlreadyRunning = errors.New("engine run already in progress")

// RunnerConfig configures an engine runner.
type RunnerConfig struct {
	Engine engine.Engine

	// Stdout and Stderr are the true underlying streams the classifiers
	// tee to. They default to the process's own stdout and stderr.
	Stdout io.Writer
	Stderr io.Writer

	Inputs *queue.InputQueue
	Rules  classifier.Rules

	PollInterval time.Duration
	RetryCeiling int
	Status       console.StatusFunc
}

// Runner owns the lifetime of the engine execution context. It installs
// classifier-wrapped streams and the input bridge as the engine's console,
// runs the opaque entrypoint on a dedicated goroutine, and guarantees the
// original streams are restored on every exit path. Each Start constructs
// fresh queues and classifier state; nothing leaks across restarts.
type Runner struct {
	cfg RunnerConfig
	hub *Hub

	mu        sync.Mutex
	state     RunState
	outcome   RunState
	runErr    error
	cancel    context.CancelFunc
	done      chan struct{}
	narration *queue.Queue
	debug     *queue.Queue
}

func NewRunner(cfg RunnerConfig, hub *Hub) *Runner {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	return &Runner{
		cfg:   cfg,
		hub:   hub,
		state: RunStateNotStarted,
	}
}

// Start launches a new engine run. It rejects a call while a run is in
// progress; after a run ends the runner can be started again with fresh
// state.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == RunStateRunning {
		return ErrAlreadyRunning
	}

	r.narration = queue.New()
	r.debug = queue.New()
	r.hub.Bind(r.narration, r.debug)

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.state = RunStateRunning
	r.outcome = RunStateNotStarted
	r.runErr = nil

	go r.run(runCtx, r.done)
	return nil
}

// State returns the current lifecycle state.
func (r *Runner) State() RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Outcome returns how the last run ended (Completed or Faulted) and the
// engine fault, if any. Meaningful once the runner reaches Restored.
func (r *Runner) Outcome() (RunState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome, r.runErr
}

// Done returns a channel closed when the current run has fully finished,
// streams restored included.
func (r *Runner) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return r.done
}

// Stop cancels the current run and waits for restoration, bounded by ctx.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.state != RunStateRunning {
		r.mu.Unlock()
		return nil
	}
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// newConsole builds a fresh classifier/input-bridge set around the original
// streams. Called at run start and once more on transport recovery.
func (r *Runner) newConsole() (stdout, stderr *classifier.Writer, stdin *console.Bridge) {
	stdout = classifier.NewWriter(classifier.WriterConfig{
		Inner:     r.cfg.Stdout,
		Narration: r.narration,
		Debug:     r.debug,
		Rules:     r.cfg.Rules,
	})
	stderr = classifier.NewWriter(classifier.WriterConfig{
		Inner:       r.cfg.Stderr,
		Narration:   r.narration,
		Debug:       r.debug,
		Rules:       r.cfg.Rules,
		ErrorStream: true,
	})
	stdin = console.NewBridge(console.BridgeConfig{
		Inputs:       r.cfg.Inputs,
		PollInterval: r.cfg.PollInterval,
		RetryCeiling: r.cfg.RetryCeiling,
		Status:       r.cfg.Status,
	})
	return stdout, stderr, stdin
}

func (r *Runner) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	stdout, stderr, stdin := r.newConsole()

	var finalErr error
	recovered := false
	for {
		err := r.invoke(ctx, stdin, stdout, stderr)
		if err == nil {
			break
		}
		if isTransportFault(err) && !recovered && ctx.Err() == nil {
			// One rebuild-and-continue attempt per run; a second
			// transport fault is terminal.
			recovered = true
			stdout.Flush()
			stderr.Flush()
			stdout, stderr, stdin = r.newConsole()
			r.narration.Push(domain.NewInfo("Connection restored. You may continue playing."))
			continue
		}
		finalErr = err
		break
	}

	// Restoration path. Flushing the wrapped streams and dropping them is
	// the whole of restoration here; it cannot fail.
	stdout.Flush()
	stderr.Flush()

	r.mu.Lock()
	if finalErr == nil {
		r.outcome = RunStateCompleted
		r.debug.Push(domain.NewDebugInfo("engine run completed"))
	} else {
		r.outcome = RunStateFaulted
		r.runErr = finalErr
		r.debug.Push(domain.NewError(fmt.Sprintf("engine fault: %v", finalErr)))
	}
	r.state = RunStateRestored
	metrics.EngineRuns.WithLabelValues(r.outcome.String()).Inc()
	r.mu.Unlock()
}

// invoke runs the opaque entrypoint, converting a panic into an engine
// fault so nothing escapes onto the runner goroutine.
func (r *Runner) invoke(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("engine panic: %v", p)
		}
	}()
	return r.cfg.Engine.Run(ctx, stdin, stdout, stderr)
}

// isTransportFault classifies broken-pipe style failures that warrant a
// local rebuild instead of a terminal fault.
func isTransportFault(err error) bool {
	if errors.Is(err, io.ErrClosedPipe) || errors.Is(err, syscall.EPIPE) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
