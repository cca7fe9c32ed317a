package sched

import "sync"

// Queue defers work until the end of the current input event. Selection
// state reported by the host is only authoritative after the event that
// changed it finishes, so caret and scroll updates are posted here and
// drained by the host loop once per tick.
//
// Tasks posted while draining run on the next drain, not the current one.
type Queue struct {
	mu     sync.Mutex
	tasks  []*queuedTask
	notify func()
}

type queuedTask struct {
	fn        func()
	cancelled bool
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Notify registers a callback invoked after every Post, outside the
// queue lock. Hosts that block waiting for input use it to wake their
// event loop when work arrives from another goroutine.
func (q *Queue) Notify(fn func()) {
	q.mu.Lock()
	q.notify = fn
	q.mu.Unlock()
}

// Post appends fn to the queue and returns a cancel function. Cancel is
// a no-op once the task has run.
func (q *Queue) Post(fn func()) (cancel func()) {
	t := &queuedTask{fn: fn}

	q.mu.Lock()
	q.tasks = append(q.tasks, t)
	notify := q.notify
	q.mu.Unlock()

	if notify != nil {
		notify()
	}

	return func() {
		q.mu.Lock()
		t.cancelled = true
		q.mu.Unlock()
	}
}

// Drain runs every task queued before the call, in posting order, and
// returns how many ran. Cancelled tasks are skipped.
func (q *Queue) Drain() int {
	q.mu.Lock()
	batch := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	ran := 0
	for _, t := range batch {
		q.mu.Lock()
		cancelled := t.cancelled
		q.mu.Unlock()
		if cancelled {
			continue
		}
		t.fn()
		ran++
	}
	return ran
}

// Clear drops all queued tasks without running them.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.tasks = nil
	q.mu.Unlock()
}

// Len returns the number of queued, uncancelled tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for _, t := range q.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}
