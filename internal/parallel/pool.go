// Package parallel provides the work-stealing worker pool that executes row
// tasks.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// StealRounds is how many times an idle worker sweeps every queue with
// non-blocking pops before it parks on its own queue.
const StealRounds = 32

// WorkerPool is a fixed pool of goroutines with one queue per worker.
//
// Submit spreads tasks round-robin. An idle worker first scans all queues,
// starting with its own, using non-blocking pops; only when that finds nothing
// does it block on its own queue. This steals work from busy workers without
// any central lock.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	// workers is the number of worker goroutines.
	workers int

	// queues holds per-worker task queues.
	queues []*queue

	// index is the round-robin dispatch cursor.
	index atomic.Uint64

	// executed counts tasks run by each worker.
	executed []atomic.Int64

	// alive counts worker goroutines that have not exited.
	alive atomic.Int32

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool
}

// NewWorkerPool creates a new worker pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used; the pool never has fewer
// than one worker. The pool starts immediately.
func NewWorkerPool(workers int) *WorkerPool {
	p := newWorkerPool(workers)
	p.start()
	return p
}

func newWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = max(workers, 1)

	p := &WorkerPool{
		workers:  workers,
		queues:   make([]*queue, workers),
		executed: make([]atomic.Int64, workers),
	}
	for i := range p.queues {
		p.queues[i] = newQueue()
	}
	return p
}

func (p *WorkerPool) start() {
	p.running.Store(true)
	p.wg.Add(p.workers)
	p.alive.Add(int32(p.workers))
	for i := range p.workers {
		go p.worker(i)
	}
	slogger().Debug("parallel: worker pool started", "workers", p.workers)
}

// worker is the main loop for each worker goroutine.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	defer p.alive.Add(-1)

	for {
		fn, ok := p.steal(id)
		if !ok {
			fn, ok = p.queues[id].pop()
			if !ok {
				return
			}
		}
		p.run(id, fn)
	}
}

// steal makes up to workers*StealRounds non-blocking pop attempts, starting
// at the worker's own queue and moving circularly through the others.
func (p *WorkerPool) steal(id int) (func(), bool) {
	for n := range p.workers * StealRounds {
		if fn, ok := p.queues[(id+n)%p.workers].tryPop(); ok {
			return fn, true
		}
	}
	return nil, false
}

// run executes fn on worker id. A panicking task is logged and counted as
// executed; the worker keeps running.
func (p *WorkerPool) run(id int, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slogger().Warn("parallel: task panicked", "worker", id, "panic", r)
		}
	}()
	p.executed[id].Add(1)
	fn()
}

// Submit sends a single task to the pool.
//
// The starting queue comes from the round-robin cursor. Submit tries a
// non-blocking push there and then on every other queue; if all of them are
// contended it falls back to a blocking push on the starting queue.
// If the pool is closed, this is a no-op.
func (p *WorkerPool) Submit(fn func()) {
	if fn == nil || !p.running.Load() {
		return
	}

	i := int((p.index.Add(1) - 1) % uint64(p.workers))
	for n := range p.workers {
		if p.queues[(i+n)%p.workers].tryPush(fn) {
			return
		}
	}
	p.queues[i].push(fn)
}

// ExecuteAll submits every work item and waits for all of them to complete.
// If the pool is closed, this is a no-op. ExecuteAll must not race with Close.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 || !p.running.Load() {
		return
	}

	var completionWG sync.WaitGroup
	completionWG.Add(len(work))

	for _, fn := range work {
		p.Submit(func() {
			defer completionWG.Done()
			fn()
		})
	}

	completionWG.Wait()
}

// Close shuts the pool down.
//
// Every queue is marked done and all workers are woken and joined. Workers
// drain what they can reach before exiting, but tasks still queued once the
// last worker has seen its queue closed and empty are dropped.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}

	for _, q := range p.queues {
		q.close()
	}
	p.wg.Wait()
	slogger().Debug("parallel: worker pool stopped", "workers", p.workers, "executed", p.Executed())
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}

// QueuedWork returns the total number of tasks currently queued.
// This is an approximation as queues can change while iterating.
func (p *WorkerPool) QueuedWork() int {
	total := 0
	for _, q := range p.queues {
		total += q.len()
	}
	return total
}

// Executed returns the total number of tasks run so far.
func (p *WorkerPool) Executed() int64 {
	var total int64
	for i := range p.executed {
		total += p.executed[i].Load()
	}
	return total
}

// ExecutedByWorker returns the number of tasks each worker has run.
func (p *WorkerPool) ExecutedByWorker() []int64 {
	out := make([]int64, p.workers)
	for i := range p.executed {
		out[i] = p.executed[i].Load()
	}
	return out
}
