package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"
)

const defaultStopTimeout = 5 * time.Second

// CommandConfig holds configuration for running a subprocess engine.
type CommandConfig struct {
	Command     string
	Args        []string
	WorkingDir  string
	Environment map[string]string

	// StopTimeout bounds how long the process gets between SIGTERM and
	// SIGKILL when the run context is cancelled.
	StopTimeout time.Duration
}

// Command runs an external process as the engine, with the installed
// console wired to its stdio.
type Command struct {
	config CommandConfig
}

func NewCommand(config CommandConfig) (*Command, error) {
	if config.Command == "" {
		return nil, fmt.Errorf("command cannot be empty")
	}
	if config.StopTimeout <= 0 {
		config.StopTimeout = defaultStopTimeout
	}
	return &Command{config: config}, nil
}

func (c *Command) Run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, c.config.Command, c.config.Args...)

	if c.config.WorkingDir != "" {
		cmd.Dir = c.config.WorkingDir
	}

	cmd.Env = os.Environ()
	for k, v := range c.config.Environment {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	// SIGTERM on cancel; SIGKILL after the stop timeout.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = c.config.StopTimeout

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("engine process: %w", err)
	}
	return nil
}
