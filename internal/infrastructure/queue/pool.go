package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"NotebookValidator/internal/ports"
)

var (
	ErrNotStarted = errors.New("queue: pool is not running")
	ErrQueueFull  = errors.New("queue: pool is full")
)

type job struct {
	handle ports.JobHandle
	fn     ports.JobFunc
}

// Pool runs submitted jobs on a fixed number of background workers.
// A panicking job is not recovered.
type Pool struct {
	workers int
	logger  *slog.Logger

	mu      sync.Mutex
	jobs    chan job
	stop    chan struct{}
	wg      sync.WaitGroup
	pending atomic.Int64
	idle    *sync.Cond
}

var _ ports.Dispatcher = (*Pool)(nil)

// NewPool builds a pool with the given worker count and queue capacity.
func NewPool(workers, capacity int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if capacity < 0 {
		capacity = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{
		workers: workers,
		logger:  logger,
		jobs:    make(chan job, capacity),
	}
	p.idle = sync.NewCond(&p.mu)
	return p
}

// Start launches the workers. They exit when ctx is cancelled or Stop is called.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		return nil
	}

	p.stop = make(chan struct{})
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work(ctx, p.stop, i)
	}
	return nil
}

// Submit enqueues fn and returns its handle without waiting for it to run.
func (p *Pool) Submit(ctx context.Context, fn ports.JobFunc) (ports.JobHandle, error) {
	if fn == nil {
		return ports.JobHandle{}, fmt.Errorf("queue: nil job")
	}

	p.mu.Lock()
	running := p.stop != nil
	p.mu.Unlock()
	if !running {
		return ports.JobHandle{}, ErrNotStarted
	}

	j := job{handle: ports.JobHandle{ID: uuid.NewString()}, fn: fn}
	p.pending.Add(1)
	select {
	case p.jobs <- j:
		return j.handle, nil
	case <-ctx.Done():
		p.done()
		return ports.JobHandle{}, ctx.Err()
	default:
		p.done()
		return ports.JobHandle{}, ErrQueueFull
	}
}

// Pending reports jobs that are queued or running.
func (p *Pool) Pending() int {
	return int(p.pending.Load())
}

// Wait blocks until every submitted job has finished or ctx is done.
func (p *Pool) Wait(ctx context.Context) error {
	finished := make(chan struct{})
	go func() {
		p.mu.Lock()
		for p.pending.Load() > 0 && ctx.Err() == nil {
			p.idle.Wait()
		}
		p.mu.Unlock()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		p.mu.Lock()
		p.idle.Broadcast()
		p.mu.Unlock()
		return ctx.Err()
	}
}

// Stop halts the workers after their current job and waits for them.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stop == nil {
		p.mu.Unlock()
		return nil
	}
	close(p.stop)
	p.stop = nil
	p.mu.Unlock()

	stopped := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) work(ctx context.Context, stop <-chan struct{}, worker int) {
	defer p.wg.Done()
	for {
		select {
		case j := <-p.jobs:
			p.run(ctx, j, worker)
		case <-ctx.Done():
			return
		case <-stop:
			return
		}
	}
}

func (p *Pool) run(ctx context.Context, j job, worker int) {
	defer p.done()

	logger := p.logger.With("job_id", j.handle.ID, "worker", worker)
	logger.Debug("job started")
	if err := j.fn(ctx, j.handle); err != nil {
		logger.Error("job failed", "error", err)
		return
	}
	logger.Debug("job finished")
}

func (p *Pool) done() {
	if p.pending.Add(-1) == 0 {
		p.mu.Lock()
		p.idle.Broadcast()
		p.mu.Unlock()
	}
}
