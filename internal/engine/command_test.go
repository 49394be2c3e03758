package engine

import (
	"bytes"
	"context"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestNewCommandRequiresCommand(t *testing.T) {
	if _, err := NewCommand(CommandConfig{}); err == nil {
		t.Fatal("expected error for empty command")
	}
}

func TestCommandRunsSubprocess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	eng, err := NewCommand(CommandConfig{
		Command: "/bin/sh",
		Args:    []string{"-c", "read line; echo \"echoed: $line\""},
	})
	if err != nil {
		t.Fatalf("NewCommand failed: %v", err)
	}

	var stdout, stderr bytes.Buffer
	stdin := strings.NewReader("hello\n")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := eng.Run(ctx, stdin, &stdout, &stderr); err != nil {
		t.Fatalf("Run failed: %v, stderr=%q", err, stderr.String())
	}
	if got := strings.TrimSpace(stdout.String()); got != "echoed: hello" {
		t.Errorf("unexpected stdout %q", got)
	}
}

func TestCommandEnvironmentAndDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	dir := t.TempDir()
	eng, err := NewCommand(CommandConfig{
		Command:     "/bin/sh",
		Args:        []string{"-c", "echo \"$STORY_WORLD\"; pwd"},
		WorkingDir:  dir,
		Environment: map[string]string{"STORY_WORLD": "keep-of-doom"},
	})
	if err != nil {
		t.Fatalf("NewCommand failed: %v", err)
	}

	var stdout bytes.Buffer
	if err := eng.Run(context.Background(), strings.NewReader(""), &stdout, &bytes.Buffer{}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 2 || lines[0] != "keep-of-doom" {
		t.Errorf("environment not passed through, got %q", stdout.String())
	}
	if !strings.Contains(lines[1], dir) {
		t.Errorf("working directory not honored, got %q", lines[1])
	}
}

func TestCommandFailureWrapsError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	eng, err := NewCommand(CommandConfig{
		Command: "/bin/sh",
		Args:    []string{"-c", "exit 3"},
	})
	if err != nil {
		t.Fatalf("NewCommand failed: %v", err)
	}

	runErr := eng.Run(context.Background(), strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	if runErr == nil || !strings.Contains(runErr.Error(), "engine process") {
		t.Errorf("expected wrapped process error, got %v", runErr)
	}
}

func TestCommandContextCancellation(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	eng, err := NewCommand(CommandConfig{
		Command:     "/bin/sh",
		Args:        []string{"-c", "sleep 30"},
		StopTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("NewCommand failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	runErr := eng.Run(ctx, strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	if runErr == nil {
		t.Fatal("expected error after cancellation")
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("process not terminated promptly, took %v", elapsed)
	}
}
