package queue

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInputQueue_SendReceive(t *testing.T) {
	q := NewInputQueue(10)
	defer q.Close()

	ctx := context.Background()

	if err := q.Send(ctx, "test1"); err != nil {
		t.Fatalf("failed to send: %v", err)
	}

	select {
	case input := <-q.Receive():
		if input != "test1" {
			t.Errorf("expected 'test1', got %q", input)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for input")
	}
}

func TestInputQueue_MultipleMessages(t *testing.T) {
	q := NewInputQueue(10)
	defer q.Close()

	ctx := context.Background()

	messages := []string{"msg1", "msg2", "msg3", "msg4", "msg5"}
	for _, msg := range messages {
		if err := q.Send(ctx, msg); err != nil {
			t.Fatalf("failed to send: %v", err)
		}
	}

	for i, expected := range messages {
		select {
		case input := <-q.Receive():
			if input != expected {
				t.Errorf("message %d: expected %q, got %q", i, expected, input)
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for message %d", i)
		}
	}
}

func TestInputQueue_SendAfterClose(t *testing.T) {
	q := NewInputQueue(10)
	q.Close()
	q.Close() // double close is safe

	if err := q.Send(context.Background(), "late"); !errors.Is(err, ErrInputClosed) {
		t.Fatalf("expected ErrInputClosed, got %v", err)
	}

	if _, ok := <-q.Receive(); ok {
		t.Fatal("expected receive channel to be closed")
	}
}

func TestInputQueue_SendRespectsContext(t *testing.T) {
	q := NewInputQueue(1)
	defer q.Close()

	if err := q.Send(context.Background(), "fill"); err != nil {
		t.Fatalf("failed to send: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := q.Send(ctx, "blocked"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
