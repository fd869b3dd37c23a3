// Package daemon implements the notification registry: the single
// dispatch loop that serializes all state mutation, the worker pool for
// background payload decoding, and the protocol surface bound to the bus
// endpoints.
package daemon

import (
	"context"
	"sync"
)

// Loop is the daemon's single logical owner thread. Every registry
// mutation funnels through it, so registry state needs no locking.
type Loop struct {
	tasks chan func()
}

// NewLoop creates a dispatch loop.
func NewLoop() *Loop {
	return &Loop{
		tasks: make(chan func(), 128),
	}
}

// Run executes submitted tasks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Submit enqueues a task for execution on the loop.
func (l *Loop) Submit(fn func()) {
	l.tasks <- fn
}

// Call runs fn on the loop and waits for it to finish. Must not be called
// from the loop itself.
func (l *Loop) Call(fn func()) {
	done := make(chan struct{})
	l.tasks <- func() {
		fn()
		close(done)
	}
	<-done
}

// Pool runs background jobs off the dispatch loop. It exists for unpacking
// large opaque payloads (image buffers): decoding runs on a worker, and
// the continuation re-enters the loop, so one oversized payload cannot
// stall unrelated calls.
type Pool struct {
	jobs chan func()
	wg   sync.WaitGroup
}

// NewPool starts a pool with n workers.
func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{
		jobs: make(chan func(), 32),
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
			}
		}()
	}
	return p
}

// Submit enqueues a job on the pool.
func (p *Pool) Submit(job func()) {
	p.jobs <- job
}

// Close stops accepting jobs and waits for in-flight work to finish.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
