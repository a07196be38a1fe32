package queue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"NotebookValidator/internal/ports"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPoolRunsJobsWithHandles(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := NewPool(2, 8, quietLogger())
	if err := pool.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer pool.Stop(ctx)

	var mu sync.Mutex
	seen := map[string]bool{}
	handles := make([]ports.JobHandle, 0, 5)
	for i := 0; i < 5; i++ {
		h, err := pool.Submit(ctx, func(_ context.Context, job ports.JobHandle) error {
			mu.Lock()
			seen[job.ID] = true
			mu.Unlock()
			return nil
		})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if h.ID == "" {
			t.Fatal("expected non-empty job id")
		}
		handles = append(handles, h)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Wait(waitCtx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if pool.Pending() != 0 {
		t.Fatalf("Pending = %d, want 0", pool.Pending())
	}

	mu.Lock()
	defer mu.Unlock()
	for _, h := range handles {
		if !seen[h.ID] {
			t.Fatalf("job %s did not receive its own handle", h.ID)
		}
	}
}

func TestPoolJobErrorDoesNotStopWorkers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := NewPool(1, 4, quietLogger())
	_ = pool.Start(ctx)
	defer pool.Stop(ctx)

	ran := make(chan struct{}, 1)
	if _, err := pool.Submit(ctx, func(context.Context, ports.JobHandle) error { return errors.New("boom") }); err != nil {
		t.Fatalf("Submit failing job: %v", err)
	}
	if _, err := pool.Submit(ctx, func(context.Context, ports.JobHandle) error { ran <- struct{}{}; return nil }); err != nil {
		t.Fatalf("Submit second job: %v", err)
	}

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("second job did not run after a failing job")
	}
}

func TestPoolSubmitErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := NewPool(1, 1, quietLogger())
	if _, err := pool.Submit(ctx, func(context.Context, ports.JobHandle) error { return nil }); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}

	_ = pool.Start(ctx)
	defer pool.Stop(ctx)

	release := make(chan struct{})
	started := make(chan struct{})
	blocking := func(context.Context, ports.JobHandle) error {
		close(started)
		<-release
		return nil
	}
	if _, err := pool.Submit(ctx, blocking); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	<-started

	// Worker busy, one slot in the buffer.
	if _, err := pool.Submit(ctx, func(context.Context, ports.JobHandle) error { return nil }); err != nil {
		t.Fatalf("Submit into buffer: %v", err)
	}
	if _, err := pool.Submit(ctx, func(context.Context, ports.JobHandle) error { return nil }); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if got := pool.Pending(); got != 2 {
		t.Fatalf("Pending = %d, want 2", got)
	}
	close(release)

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Wait(waitCtx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}
