package parallel

import "sync"

// queue is one worker's FIFO of pending tasks.
//
// The try* methods never block: they give up when the mutex is held by
// someone else. push and pop take the lock unconditionally, and pop parks on
// the condition variable until a task arrives or the queue is closed.
type queue struct {
	mu    sync.Mutex
	ready sync.Cond
	tasks []func()
	done  bool
}

func newQueue() *queue {
	q := &queue{}
	q.ready.L = &q.mu
	return q
}

// tryPop removes the oldest task if the lock is free and the queue is not
// empty.
func (q *queue) tryPop() (func(), bool) {
	if !q.mu.TryLock() {
		return nil, false
	}
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return nil, false
	}
	return q.popFront(), true
}

// tryPush appends fn if the lock is free and wakes one waiter.
func (q *queue) tryPush(fn func()) bool {
	if !q.mu.TryLock() {
		return false
	}
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
	q.ready.Signal()
	return true
}

// push appends fn, waiting for the lock if needed, and wakes one waiter.
func (q *queue) push(fn func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
	q.ready.Signal()
}

// pop blocks until a task is available or the queue is closed.
// It returns false only when the queue is closed and empty.
func (q *queue) pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.tasks) == 0 && !q.done {
		q.ready.Wait()
	}
	if len(q.tasks) == 0 {
		return nil, false
	}
	return q.popFront(), true
}

// close marks the queue done and wakes every waiter. Safe to call repeatedly.
func (q *queue) close() {
	q.mu.Lock()
	q.done = true
	q.mu.Unlock()
	q.ready.Broadcast()
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// popFront must be called with mu held and a non-empty queue.
func (q *queue) popFront() func() {
	fn := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	if len(q.tasks) == 0 {
		q.tasks = q.tasks[:0:0]
	}
	return fn
}
