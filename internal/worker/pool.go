// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package worker runs independent jobs on a fixed number of goroutines and
// hands results back in submission order.
package worker

import (
	"context"
	"sync"
)

// Job is a unit of work.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of a Job.
type Result interface {
	Err() error
}

// JobFunc adapts a function to Job.
type JobFunc func(ctx context.Context) Result

// Execute implements Job.
func (f JobFunc) Execute(ctx context.Context) Result { return f(ctx) }

type indexed struct {
	seq int
	job Job
}

type slot struct {
	seq    int
	result Result
}

// Pool manages a fixed set of workers.
type Pool struct {
	workers   int
	jobQueue  chan indexed
	results   chan slot
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu        sync.Mutex
	submitted int
	collected []slot
	collector sync.WaitGroup
}

// NewPool creates a pool bound to ctx. Fewer than one worker means one.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Pool{
		workers:  workers,
		jobQueue: make(chan indexed, workers*2),
		results:  make(chan slot, workers*2),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Workers returns the pool size.
func (p *Pool) Workers() int { return p.workers }

// Start launches the workers and the result collector.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	p.collector.Add(1)
	go p.collect()
}

// collect drains results as they arrive so that workers never block on a
// full results channel.
func (p *Pool) collect() {
	defer p.collector.Done()
	for s := range p.results {
		p.mu.Lock()
		p.collected = append(p.collected, s)
		p.mu.Unlock()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case j, ok := <-p.jobQueue:
			if !ok {
				return
			}
			r := j.job.Execute(p.ctx)
			select {
			case p.results <- slot{seq: j.seq, result: r}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues job. It returns false when the pool's context is done and
// the job was dropped.
func (p *Pool) Submit(job Job) bool {
	p.mu.Lock()
	seq := p.submitted
	p.submitted++
	p.mu.Unlock()

	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- indexed{seq: seq, job: job}:
		return true
	}
}

// Wait closes the queue, waits for the workers and returns one entry per
// submitted job in submission order. Jobs that never ran, because the
// context was cancelled, have a nil entry.
//
// Submit must not be called concurrently with or after Wait.
func (p *Pool) Wait() []Result {
	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()
	p.collector.Wait()
	p.cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Result, p.submitted)
	for _, s := range p.collected {
		out[s.seq] = s.result
	}
	return out
}

// Shutdown cancels outstanding work and stops the workers.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeResults()
	p.collector.Wait()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() { close(p.results) })
}
