package classifier

import (
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/ricochet1k/storymesh/internal/domain"
	"github.com/ricochet1k/storymesh/internal/metrics"
	"github.com/ricochet1k/storymesh/internal/queue"
)

var ansiEscape = regexp.MustCompile(`\x1B(?:[@-Z\\-_]|\[[0-?]*[ -/]*[@-~])`)

func stripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

// WriterConfig configures a classifying stream writer.
type WriterConfig struct {
	// Inner is the true underlying stream; every write is teed to it
	// best-effort before classification.
	Inner io.Writer

	Narration *queue.Queue
	Debug     *queue.Queue
	Rules     Rules

	// ErrorStream marks the wrapped stream as the error output; lines
	// routed to the debug channel from it are tagged as errors.
	ErrorStream bool
}

// Writer wraps one physical output stream of the engine. It buffers
// arbitrarily chunked writes into complete lines, groups narrative lines
// into blocks, and routes classified messages onto the narration and debug
// queues. Write never returns an error to the caller.
type Writer struct {
	inner       io.Writer
	narration   *queue.Queue
	debug       *queue.Queue
	rules       Rules
	errorStream bool

	mu        sync.Mutex
	capturing bool
	carry     string   // trailing incomplete line, never contains a newline
	block     []string // buffered narrative block while capturing
}

func NewWriter(cfg WriterConfig) *Writer {
	return &Writer{
		inner:       cfg.Inner,
		narration:   cfg.Narration,
		debug:       cfg.Debug,
		rules:       cfg.Rules,
		errorStream: cfg.ErrorStream,
	}
}

// Write tees p to the underlying stream and classifies every complete line.
// It accepts fragments that split mid-line or span multiple lines, always
// reports full consumption, and never fails.
func (w *Writer) Write(p []byte) (int, error) {
	if w.inner != nil {
		// Tee raw bytes, control codes included. A broken underlying
		// stream must not reach the engine thread.
		_, _ = w.inner.Write(p)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.carry += string(p)
	for {
		idx := strings.IndexByte(w.carry, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimSuffix(w.carry[:idx], "\r")
		w.carry = w.carry[idx+1:]
		w.classifyLine(line)
	}

	return len(p), nil
}

// Flush emits any open narrative block, terminated or not. It is called on
// stream close and shutdown so trailing narration is never lost.
func (w *Writer) Flush() {
	w.mu.Lock()
	w.flushBlock()
	w.mu.Unlock()

	if f, ok := w.inner.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}
}

// classifyLine routes one complete line. Caller holds w.mu.
func (w *Writer) classifyLine(raw string) {
	line := stripANSI(raw)

	switch {
	case w.rules.isStatusLine(line):
		w.flushBlock()
		w.emitDebug(line)

	case strings.Contains(line, w.rules.BlockMarker):
		w.capturing = true
		w.block = []string{line}

	case w.capturing:
		switch {
		case strings.TrimSpace(line) == "":
			w.block = append(w.block, "")
		case w.rules.endsBlock(line):
			w.flushBlock()
			w.emitDebug(line)
		default:
			w.block = append(w.block, line)
		}

	case strings.TrimSpace(line) == "":
		// Idle blank lines are dropped.

	case w.rules.isDiagnostic(line):
		w.debug.Push(domain.NewDebug(line, false))
		metrics.LinesClassified.WithLabelValues(domain.ChannelDebug.String()).Inc()

	default:
		w.emitDebug(line)
	}
}

// flushBlock closes any open block and pushes it to the narration queue as
// a single message. Blocks that are empty after trimming are discarded.
// Caller holds w.mu.
func (w *Writer) flushBlock() {
	if !w.capturing {
		return
	}
	w.capturing = false
	block := w.block
	w.block = nil

	content := strings.Join(block, "\n")
	content = strings.Replace(content, w.rules.BlockMarker, "", 1)
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	w.narration.Push(domain.NewNarration(content))
	metrics.LinesClassified.WithLabelValues(domain.ChannelNarration.String()).Inc()
}

// emitDebug pushes a line to the debug queue with error tagging. Caller
// holds w.mu.
func (w *Writer) emitDebug(line string) {
	isError := w.errorStream || w.rules.isError(line)
	w.debug.Push(domain.NewDebug(line, isError))
	metrics.LinesClassified.WithLabelValues(domain.ChannelDebug.String()).Inc()
}
