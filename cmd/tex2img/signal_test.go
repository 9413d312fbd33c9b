package main

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNotifyContext(t *testing.T) {
	t.Parallel()

	t.Run("stop cancels", func(t *testing.T) {
		t.Parallel()

		ctx, stop := notifyContext(context.Background())
		if ctx.Err() != nil {
			t.Fatalf("fresh context already done: %v", ctx.Err())
		}
		stop()
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
			t.Fatal("context not canceled by stop")
		}
	})

	t.Run("parent deadline propagates", func(t *testing.T) {
		t.Parallel()

		parent, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		ctx, stop := notifyContext(parent)
		defer stop()

		<-ctx.Done()
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			t.Errorf("err = %v, want DeadlineExceeded", ctx.Err())
		}
	})
}
