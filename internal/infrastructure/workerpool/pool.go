package workerpool

import (
	"context"
	"fmt"
	"sync"
)

// Pool bounds concurrent blocking inference work to a fixed number of
// workers. Request handlers submit a task and suspend until it finishes,
// so a burst of traffic queues instead of serializing the whole service
// behind a single inference call.
type Pool struct {
	tasks chan task

	closeOnce sync.Once
	wg        sync.WaitGroup
}

type task struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

func New(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	pool := &Pool{tasks: make(chan task)}
	pool.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go pool.worker()
	}
	return pool
}

// Run dispatches the task to a worker and waits for its result. It
// returns ctx.Err() if the context ends before a worker picks the task
// up; once a task is running it owns the outcome.
func (p *Pool) Run(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("workerpool: task is nil")
	}

	t := task{ctx: ctx, fn: fn, done: make(chan error, 1)}
	select {
	case p.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-t.done
}

func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.tasks)
	})
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.tasks {
		if err := t.ctx.Err(); err != nil {
			t.done <- err
			continue
		}
		t.done <- t.fn(t.ctx)
	}
}
