// Package engine adapts opaque synchronous engines to the bridge's console
// streams. The engine is treated as a black box that writes text and blocks
// on line reads; it is never assumed to cooperate with classification.
package engine

import (
	"context"
	"io"
)

// Engine is a synchronous entrypoint run against an installed console.
// Run returns when the engine exits; errors surface engine faults.
type Engine interface {
	Run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) error
}

// Func adapts a plain function to the Engine interface.
type Func func(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) error

func (f Func) Run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) error {
	return f(ctx, stdin, stdout, stderr)
}
